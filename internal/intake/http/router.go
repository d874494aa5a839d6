package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/options", h.GetOptions)

	wz := rg.Group("/wizard")
	wz.GET("", h.GetWizard)
	wz.PATCH("/details", h.UpdateDetails)
	wz.PATCH("/timeline", h.UpdateTimeline)
	wz.POST("/next", h.Next)
	wz.POST("/back", h.Back)
	wz.POST("/edit", h.Edit)
	wz.POST("/files", h.UploadFiles)
	wz.DELETE("/files", h.DeleteFile)
	wz.POST("/submit", h.Submit)
	wz.GET("/results", h.GetResults)
	wz.POST("/draft", h.SaveDraft)
	wz.POST("/restart", h.Restart)
}
