package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rasa-cafe/utils"
)

func (ctl *Controller) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Please upload a file.")
		return
	}

	url, err := utils.SaveImage(file, ctl.ImagesDir)
	if errors.Is(err, utils.ErrImageTooLarge) || errors.Is(err, utils.ErrInvalidFileType) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		ctl.serverError(c, "save image failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image uploaded successfully",
		"data":    gin.H{"imageUrl": url},
	})
}
