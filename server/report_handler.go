package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"github.com/techagentng/thermotrack/server/response"
)

func (s *Server) handleSubmitReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		var req models.SubmitReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		report, err := s.ReportService.SubmitReport(userID, &req)
		if err != nil {
			if e, ok := err.(*errs.Error); ok {
				response.JSON(c, "", e.Status, nil, e)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "report submitted", http.StatusCreated, report, nil)
	}
}

func (s *Server) handleGetRecentReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		reports, err := s.ReportService.GetRecentReports(limit)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "reports retrieved", http.StatusOK, reports, nil)
	}
}

// handlePrecheckReport runs the advisory AI judgment on a candidate
// submission; the result never blocks submitting.
func (s *Server) handlePrecheckReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := userIDFromContext(c); !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "image is required", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}
		location := c.PostForm("location")
		declaredType := c.PostForm("object_type")
		temperature, err := strconv.ParseFloat(c.PostForm("temperature"), 64)
		if err != nil {
			response.JSON(c, "temperature is required", http.StatusBadRequest, nil, errs.ErrBadRequest)
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

		result, err := s.PrecheckService.PrecheckReport(c.Request.Context(), image, fileHeader.Header.Get("Content-Type"), location, declaredType, temperature)
		if err != nil {
			if e, ok := err.(*errs.Error); ok {
				response.JSON(c, "", e.Status, nil, e)
				return
			}
			response.JSON(c, "verification service unavailable", http.StatusBadGateway, nil, err)
			return
		}
		response.JSON(c, "precheck complete", http.StatusOK, result, nil)
	}
}

func (s *Server) handleUploadReportImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "image is required", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		result, err := s.MediaService.UploadReportImage(c.Request.Context(), fileHeader, userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "image uploaded", http.StatusOK, result, nil)
	}
}
