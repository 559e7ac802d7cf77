package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shiftswap/internal/http/api"
	"github.com/medrota/shiftswap/internal/http/api/shifts/packets"
	"github.com/medrota/shiftswap/internal/model"
	"github.com/medrota/shiftswap/internal/schedule"
)

type ShiftController struct {
	schedules *schedule.Manager
}

func NewShiftController(schedules *schedule.Manager) *ShiftController {
	return &ShiftController{schedules: schedules}
}

func ShiftModule(schedules *schedule.Manager) api.Module {
	ctl := NewShiftController(schedules)
	return api.ModuleFunc(func(c *api.Controller) {
		// caller's own roster
		c.GET("/shifts/mine", ctl.listMyShifts)
		c.GET("/shifts/mine/range", ctl.listMyShiftsInRange)
		c.GET("/shifts/mine/conflicts", ctl.findConflicts)

		// roster-wide queries
		c.GET("/shifts/date/:date", ctl.listShiftsByDate)
		c.GET("/shifts/range", ctl.listShiftsInRange)

		// exchange marketplace
		c.GET("/shifts/available", ctl.listAvailable)
		c.GET("/shifts/available/role", ctl.listAvailableByRole)

		// entry lifecycle
		c.GET("/shifts/:id", ctl.getShift)
		c.POST("/shifts", ctl.createShift)
		c.PUT("/shifts/:id", ctl.updateShift)
		c.DELETE("/shifts/:id", ctl.deleteShift)
		c.PUT("/shifts/:id/available/:flag", ctl.setAvailability)
	})
}

func (s *ShiftController) listMyShifts(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	entries, err := s.schedules.EntriesForWorker(user.ID)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) listMyShiftsInRange(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	from, to, apiErr := parseDateRange(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	entries, err := s.schedules.EntriesForWorkerInRange(user.ID, from, to)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) findConflicts(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	date, err := time.Parse("2006-01-02", ctx.Query("date"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
	}
	start, err := model.ParseTimeOfDay(ctx.Query("start"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	end, err := model.ParseTimeOfDay(ctx.Query("end"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	conflicts, err := s.schedules.FindConflicts(user.ID, date, start, end)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(conflicts), nil
}

func (s *ShiftController) listShiftsByDate(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	date, err := time.Parse("2006-01-02", ctx.Param("date"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
	}
	entries, err := s.schedules.EntriesForDate(date)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) listShiftsInRange(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	from, to, apiErr := parseDateRange(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	entries, err := s.schedules.EntriesInRange(from, to)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) listAvailable(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var from, to *time.Time
	if ctx.Query("from") != "" || ctx.Query("to") != "" {
		lo, hi, apiErr := parseDateRange(ctx)
		if apiErr != nil {
			return nil, apiErr
		}
		from, to = &lo, &hi
	}
	entries, err := s.schedules.AvailableForWorker(user.ID, from, to)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) listAvailableByRole(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	date, err := time.Parse("2006-01-02", ctx.Query("date"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
	}
	entries, err := s.schedules.AvailableByRoleAndDate(ctx.Query("role"), date)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponses(entries), nil
}

func (s *ShiftController) getShift(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	entry, err := s.schedules.Get(id)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponse(entry), nil
}

func (s *ShiftController) createShift(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateShiftRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	input, role, apiErr := createInput(user.ID, request)
	if apiErr != nil {
		return nil, apiErr
	}

	entry, err := s.schedules.Create(input, role)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponse(entry), nil
}

func (s *ShiftController) updateShift(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.schedules.VerifyOwner(id, user.ID); err != nil {
		return nil, api.ServiceError(err)
	}

	var request packets.UpdateShiftRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	input, apiErr := updateInput(request)
	if apiErr != nil {
		return nil, apiErr
	}

	entry, err := s.schedules.Update(id, input)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponse(entry), nil
}

func (s *ShiftController) deleteShift(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.schedules.VerifyOwner(id, user.ID); err != nil {
		return nil, api.ServiceError(err)
	}
	if err := s.schedules.Delete(id); err != nil {
		return nil, api.ServiceError(err)
	}
	return gin.H{"message": "deleted"}, nil
}

func (s *ShiftController) setAvailability(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	flag, err := strconv.ParseBool(ctx.Param("flag"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid availability flag"}
	}
	if err := s.schedules.VerifyOwner(id, user.ID); err != nil {
		return nil, api.ServiceError(err)
	}

	entry, err := s.schedules.SetAvailability(id, flag)
	if err != nil {
		return nil, api.ServiceError(err)
	}
	return packets.NewShiftResponse(entry), nil
}

func pathID(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	return id, nil
}

func parseDateRange(ctx *gin.Context) (time.Time, time.Time, *api.APIError) {
	from, err := time.Parse("2006-01-02", ctx.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid from date, want YYYY-MM-DD"}
	}
	to, err := time.Parse("2006-01-02", ctx.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid to date, want YYYY-MM-DD"}
	}
	return from, to, nil
}

func createInput(workerID int, request packets.CreateShiftRequest) (schedule.CreateEntryInput, string, *api.APIError) {
	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return schedule.CreateEntryInput{}, "", &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
	}
	start, err := model.ParseTimeOfDay(request.Start)
	if err != nil {
		return schedule.CreateEntryInput{}, "", &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	end, err := model.ParseTimeOfDay(request.End)
	if err != nil {
		return schedule.CreateEntryInput{}, "", &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return schedule.CreateEntryInput{
		WorkerID:   workerID,
		Date:       date,
		Start:      &start,
		End:        &end,
		EndNextDay: request.EndNextDay,
		Type:       model.ShiftType(request.ShiftType),
		Available:  request.Available,
		Note:       request.Note,
	}, request.Role, nil
}

func updateInput(request packets.UpdateShiftRequest) (schedule.UpdateEntryInput, *api.APIError) {
	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return schedule.UpdateEntryInput{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
	}
	start, err := model.ParseTimeOfDay(request.Start)
	if err != nil {
		return schedule.UpdateEntryInput{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	end, err := model.ParseTimeOfDay(request.End)
	if err != nil {
		return schedule.UpdateEntryInput{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return schedule.UpdateEntryInput{
		Date:       date,
		Start:      &start,
		End:        &end,
		EndNextDay: request.EndNextDay,
		Type:       model.ShiftType(request.ShiftType),
		Available:  request.Available,
		Note:       request.Note,
	}, nil
}
