package chathandler

type HistoryQuery struct {
	Limit int `form:"limit,default=50" binding:"gte=1,lte=500"`
} // @name HistoryQuery

type MarkReadBody struct {
	UserID string `json:"user_id" binding:"required" example:"user123"`
} // @name MarkReadRequest

type MarkReadResponse struct {
	Updated int64 `json:"updated" example:"4"`
} // @name MarkReadResponse

type OnlineResponse struct {
	Users []string `json:"users"`
} // @name OnlineResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
