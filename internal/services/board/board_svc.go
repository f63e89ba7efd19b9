package board

type IBoardService interface {
	GetSnapshot(room string) Snapshot
	SetBackground(room, url string) BackgroundChanged
	AddToken(room string, token Token) TokenAdded
	MoveToken(room, tokenID string, x, y int) (TokenMoved, bool)
	ListRooms() []RoomInfo

	Attach(room string) *Subscription
	Detach(sub *Subscription)
	Viewers(room string) int
	Close()
}

type boardService struct {
	store *Store
	bc    *Broadcaster
}

var _ IBoardService = (*boardService)(nil)

// NewBoardService builds an in-memory board whose viewers each buffer up to
// bufferSize live events.
func NewBoardService(bufferSize int) IBoardService {
	store := NewStore()
	return &boardService{
		store: store,
		bc:    NewBroadcaster(store, bufferSize),
	}
}

func (svc *boardService) GetSnapshot(room string) Snapshot { return svc.store.GetSnapshot(room) }

func (svc *boardService) SetBackground(room, url string) BackgroundChanged {
	return svc.store.SetBackground(room, url)
}

func (svc *boardService) AddToken(room string, token Token) TokenAdded {
	return svc.store.AddToken(room, token)
}

func (svc *boardService) MoveToken(room, tokenID string, x, y int) (TokenMoved, bool) {
	return svc.store.MoveToken(room, tokenID, x, y)
}

func (svc *boardService) ListRooms() []RoomInfo { return svc.store.Rooms() }

func (svc *boardService) Attach(room string) *Subscription { return svc.bc.Attach(room) }
func (svc *boardService) Detach(sub *Subscription)         { svc.bc.Detach(sub) }
func (svc *boardService) Viewers(room string) int          { return svc.bc.Viewers(room) }
func (svc *boardService) Close()                           { svc.bc.Close() }
