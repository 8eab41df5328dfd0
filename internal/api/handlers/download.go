package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/services/downloader"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

type DownloadHandler struct {
	downloader *downloader.Downloader
}

func NewDownloadHandler(downloader *downloader.Downloader) *DownloadHandler {
	return &DownloadHandler{
		downloader: downloader,
	}
}

// GetVideoDetails godoc
// @Summary Resolve video details
// @Description Fetch title, author, thumbnail, duration and the downloadable qualities of a video. Qualities carry both audio and video, have a known size, are unique per label and ordered from highest to lowest.
// @Tags download
// @Accept json
// @Produce json
// @Param request body models.VideoDetailsRequest true "Video URL"
// @Success 200 {object} models.VideoDetailsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/download [post]
func (h *DownloadHandler) GetVideoDetails(c *gin.Context) {
	ctx := c.Request.Context()
	c.Set(utils.FailureErrorKey, utils.NewFetchDetailsError(nil))

	var req models.VideoDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogWarn(ctx, "Rejected video details request", utils.Fields{"error": err.Error()})
		h.errorResponse(c, utils.NewInvalidInputError(err))
		return
	}

	details, err := h.downloader.Resolve(ctx, req.VideoURL)
	if err != nil {
		appErr := asAppError(err, utils.NewFetchDetailsError(err))
		if appErr.StatusCode >= http.StatusInternalServerError {
			utils.LogError(ctx, "Error fetching video details", err, utils.Fields{"video_url": req.VideoURL})
		}
		h.errorResponse(c, appErr)
		return
	}

	c.JSON(http.StatusOK, models.VideoDetailsResponse{VideoDetails: *details})
}

// StreamVideo godoc
// @Summary Download a video
// @Description Stream the selected quality as an attachment. quality defaults to "highest"; it also accepts "lowest", an itag number or a quality label. A positive itag selects that exact encoding. If the upstream fails after bytes were sent the connection is closed and the file is truncated.
// @Tags download
// @Accept json
// @Produce application/octet-stream
// @Param request body models.DownloadRequest true "Download request"
// @Success 200 {file} binary "Video stream"
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/download [put]
func (h *DownloadHandler) StreamVideo(c *gin.Context) {
	ctx := c.Request.Context()
	c.Set(utils.FailureErrorKey, utils.NewStreamError(nil))

	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogWarn(ctx, "Rejected download request", utils.Fields{"error": err.Error()})
		h.errorResponse(c, utils.NewInvalidInputError(err))
		return
	}

	written, err := h.downloader.Relay(ctx, c.Writer, &req)
	if err == nil {
		utils.LogInfo(ctx, "Successfully streamed video", utils.Fields{
			"video_url":     req.VideoURL,
			"bytes_written": written,
			"file_name":     h.downloader.Filename(req.FileTitle()),
		})
		return
	}

	var streamErr *downloader.StreamError
	if !errors.As(err, &streamErr) {
		h.errorResponse(c, asAppError(err, utils.NewStreamError(err)))
		return
	}

	fields := utils.Fields{
		"video_url":     req.VideoURL,
		"bytes_written": written,
		"headers_sent":  streamErr.HeadersSent,
	}
	if downloader.IsClientGone(err) {
		utils.LogWarn(ctx, "Client went away during download", fields)
	} else {
		utils.LogError(ctx, "Download error", err, fields)
	}

	if streamErr.HeadersSent {
		// Nothing but a dropped connection tells the client the file is incomplete.
		c.Abort()
		panic(http.ErrAbortHandler)
	}

	c.Writer.Header().Del("Content-Disposition")
	c.Writer.Header().Del("Content-Type")
	h.errorResponse(c, utils.NewStreamError(err))
}

func (h *DownloadHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, models.ErrorResponse{Error: err.Message})
}

// asAppError returns err itself when it already is an *utils.AppError, fallback otherwise.
func asAppError(err error, fallback *utils.AppError) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fallback
}
