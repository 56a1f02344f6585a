package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cloudbucket/internal/http/middleware"
	"cloudbucket/internal/service"
)

// ListFiles returns every file owned by the caller.
//
// @Summary List the caller's files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.FileListResult
// @Failure 401 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), middleware.Owner(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadFile stores the multipart field "file" for the caller.
//
// @Summary Upload a file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} model.StoredFile
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		stored, err := svc.Upload(c.UserContext(), service.UploadInput{
			Owner:       middleware.Owner(c),
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// GetFile returns the metadata of one of the caller's files.
//
// @Summary Get file metadata
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} model.StoredFile
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := fileID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.Get(c.UserContext(), middleware.Owner(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DownloadFile streams one of the caller's files as an attachment.
//
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id}/download [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := fileID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		d, err := svc.Download(c.UserContext(), middleware.Owner(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, d.ContentType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(d.Filename))
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		// The body is closed by fasthttp once the response has been written.
		return c.SendStream(d.Body, int(d.ContentLength))
	}
}

// fileID parses the :id route param. The canonical form returned is a fresh string,
// so it stays valid in spans exported after the request buffer is reused.
func fileID(c *fiber.Ctx) (string, error) {
	u, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
