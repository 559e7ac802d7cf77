package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shiftswap/internal/exchange"
	"github.com/medrota/shiftswap/internal/http/api"
	"github.com/medrota/shiftswap/internal/http/api/shifts/packets"
	"github.com/medrota/shiftswap/internal/model"
)

type ExchangeController struct {
	workflow *exchange.Workflow
}

func NewExchangeController(workflow *exchange.Workflow) *ExchangeController {
	return &ExchangeController{workflow: workflow}
}

func ExchangeModule(workflow *exchange.Workflow) api.Module {
	ctl := NewExchangeController(workflow)
	return api.ModuleFunc(func(c *api.Controller) {
		// negotiation
		c.POST("/exchanges", ctl.createRequest)
		c.POST("/exchanges/:id/respond", ctl.respondRequest)
		c.POST("/exchanges/:id/cancel", ctl.cancelRequest)

		// read-only views
		c.GET("/exchanges/sent", ctl.listSent)
		c.GET("/exchanges/received", ctl.listReceived)
		c.GET("/exchanges/sent/state/:state", ctl.listSentByState)
		c.GET("/exchanges/received/state/:state", ctl.listReceivedByState)
		c.GET("/exchanges/state/:state", ctl.listByState)
		c.GET("/exchanges/recent", ctl.listRecent)
		c.GET("/exchanges/:id", ctl.getRequest)
	})
}

func (e *ExchangeController) createRequest(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateExchangeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	created, err := e.workflow.Create(user.ID, request.OriginID, request.DestinationID, request.Message)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponse(created), nil
}

func (e *ExchangeController) respondRequest(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.RespondExchangeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, err := e.workflow.Respond(id, user.ID, *request.Accept)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponse(updated), nil
}

func (e *ExchangeController) cancelRequest(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := e.workflow.Cancel(id, user.ID); err != nil {
		return nil, api.ServiceError(err)
	}
	return gin.H{"message": "cancelled"}, nil
}

func (e *ExchangeController) listSent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	requests, err := e.workflow.Sent(user.ID)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) listReceived(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	requests, err := e.workflow.Received(user.ID)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) listSentByState(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	requests, err := e.workflow.SentByState(user.ID, ctx.Param("state"))
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) listReceivedByState(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	requests, err := e.workflow.ReceivedByState(user.ID, ctx.Param("state"))
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) listByState(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.HasRole(model.RoleAdmin) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	requests, err := e.workflow.ByState(ctx.Param("state"))
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) listRecent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	since, err := time.Parse(time.RFC3339, ctx.Query("since"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid since timestamp, want RFC3339"}
	}
	requests, svcErr := e.workflow.SentSince(user.ID, since)
	if svcErr != nil {
		return nil, api.ServiceError(svcErr)
	}
	return packets.NewExchangeResponses(requests), nil
}

func (e *ExchangeController) getRequest(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	request, err := e.workflow.Get(id)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	// only participants may read a request
	isRecipient := request.RecipientID != nil && *request.RecipientID == user.ID
	if request.RequesterID != user.ID && !isRecipient && !user.HasRole(model.RoleAdmin) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return packets.NewExchangeResponse(request), nil
}
