package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/server/response"
	"gorm.io/gorm"
)

func (s *Server) handleGetVerifyTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		tasks, err := s.VerificationService.GetVerifyTasks(limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "verify tasks retrieved", http.StatusOK, tasks, nil)
	}
}

func (s *Server) handleClaimReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		report, err := s.VerificationService.ClaimReport(reportID, userID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrReportClaimed):
				response.JSON(c, "report already claimed", http.StatusConflict, nil, err)
			case errors.Is(err, gorm.ErrRecordNotFound):
				response.JSON(c, "report not found", http.StatusNotFound, nil, errs.ErrNotFound)
			default:
				response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			}
			return
		}
		response.JSON(c, "report claimed", http.StatusOK, report, nil)
	}
}

func (s *Server) handleVerifyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "verification image is required", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		defer file.Close()
		image, err := io.ReadAll(file)
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		outcome, err := s.VerificationService.VerifyReport(c.Request.Context(), reportID, userID, image, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrAlreadyVerified):
				response.JSON(c, "report already verified", http.StatusConflict, nil, err)
			case errors.Is(err, gorm.ErrRecordNotFound):
				response.JSON(c, "report not found", http.StatusNotFound, nil, errs.ErrNotFound)
			case errors.Is(err, errs.ErrGatewayUnavailable):
				response.JSON(c, "verification service unavailable", http.StatusBadGateway, nil, err)
			default:
				if e, ok := err.(*errs.Error); ok {
					response.JSON(c, "", e.Status, nil, e)
					return
				}
				response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			}
			return
		}

		message := "verification failed"
		if outcome.Verified {
			message = "verification successful"
		}
		response.JSON(c, message, http.StatusOK, outcome, nil)
	}
}
