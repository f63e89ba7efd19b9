package boardhandler

type SetBackgroundBody struct {
	URL *string `json:"url" binding:"required" example:"https://example.com/map.png"`
} // @name SetBackgroundRequest

type AddTokenBody struct {
	ID       string `json:"id"       binding:"required" example:"3f6c1a52-8f0e-4d8e-9a57-1f1b2b7d9e11"`
	UserID   string `json:"userId"   binding:"required" example:"u1"`
	Username string `json:"username" binding:"required" example:"Ann"`
	Color    string `json:"color"    binding:"required" example:"#ff0000"`
	X        *int   `json:"x"        binding:"required" example:"100"`
	Y        *int   `json:"y"        binding:"required" example:"100"`
} // @name AddTokenRequest

type MoveTokenBody struct {
	TokenID string `json:"tokenId" binding:"required" example:"3f6c1a52-8f0e-4d8e-9a57-1f1b2b7d9e11"`
	X       *int   `json:"x"       binding:"required" example:"132"`
	Y       *int   `json:"y"       binding:"required" example:"100"`
} // @name MoveTokenRequest

type RoomQuery struct {
	Room string `form:"room" binding:"omitempty,max=128"`
} // @name RoomQuery

type SuccessResponse struct {
	Success bool `json:"success"`
} // @name SuccessResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
