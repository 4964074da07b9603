package httpapi

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realtyhub/internal/domain"
	"realtyhub/internal/services"
	"realtyhub/internal/upload"
	apperrors "realtyhub/pkg/errors"
	"realtyhub/pkg/response"
)

type handlers struct {
	Deps
}

// multipart overhead allowed on top of the file bytes themselves
const formOverhead = 1 << 20

type authBody struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type mainImageBody struct {
	PropertyID string `json:"propertyId"`
}

type uploadsBody struct {
	Files []*upload.File `json:"files"`
}

func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, apperrors.NotFound("Route"))
}

func (h *handlers) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusMethodNotAllowed, response.ErrorBody{Error: "Method not allowed"})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	result, err := h.Health.Check(r.Context())
	if err != nil {
		log.Printf("[HEALTH] Storage ping failed: %v", err)
		response.JSON(w, r, http.StatusServiceUnavailable, result)
		return
	}
	response.OK(w, r, result)
}

// Auth

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := response.Decode(r, &creds); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, authBody{Message: "Login successful", User: user})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := response.Decode(r, &creds); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.Auth.Register(r.Context(), creds)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, authBody{Message: "Admin user created successfully", User: user})
}

// Properties

func (h *handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	list, err := h.Properties.List(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, detail)
}

func (h *handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.NewProperty
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	created, err := h.Properties.Create(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, created)
}

func (h *handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	var patch domain.PropertyPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Error(w, r, err)
		return
	}
	updated, err := h.Properties.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *handlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.Properties.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Property deleted successfully")
}

func (h *handlers) listPropertyImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.Properties.Images(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, images)
}

func (h *handlers) addPropertyImage(w http.ResponseWriter, r *http.Request) {
	var in domain.NewPropertyImage
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	created, err := h.Properties.AddImage(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, created)
}

func (h *handlers) deletePropertyImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Properties.DeleteImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Image deleted successfully")
}

func (h *handlers) setMainImage(w http.ResponseWriter, r *http.Request) {
	var body mainImageBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.Properties.SetMainImage(r.Context(), body.PropertyID, chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Main image updated successfully")
}

// Slider

func (h *handlers) listSlider(w http.ResponseWriter, r *http.Request) {
	list, err := h.Slider.ListActive(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *handlers) listAllSlider(w http.ResponseWriter, r *http.Request) {
	list, err := h.Slider.ListAll(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *handlers) createSlider(w http.ResponseWriter, r *http.Request) {
	var in domain.NewSliderImage
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	created, err := h.Slider.Create(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, created)
}

func (h *handlers) updateSlider(w http.ResponseWriter, r *http.Request) {
	var patch domain.SliderImagePatch
	if err := response.Decode(r, &patch); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.Slider.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Slider image updated successfully")
}

func (h *handlers) deleteSlider(w http.ResponseWriter, r *http.Request) {
	if err := h.Slider.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Slider image deleted successfully")
}

// Settings

func (h *handlers) getWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.WhatsApp(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, settings)
}

func (h *handlers) updateWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.WhatsAppSettingsPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Error(w, r, err)
		return
	}
	settings, err := h.Settings.UpdateWhatsApp(r.Context(), patch)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, settings)
}

func (h *handlers) whatsAppLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.Settings.Link(r.Context(), r.URL.Query().Get("propertyId"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, link)
}

func (h *handlers) getContactSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Contact(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, settings)
}

func (h *handlers) updateContactSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.ContactSettingsPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Error(w, r, err)
		return
	}
	settings, err := h.Settings.UpdateContact(r.Context(), patch)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, settings)
}

// Contact

// submitContact reports failures in the submit result shape so clients can
// read whatsappSent on every outcome
func (h *handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	result, err := h.submit(r)
	if err != nil {
		status, message := response.Describe(r, err)
		response.JSON(w, r, status, services.SubmitResult{Message: message})
		return
	}
	response.OK(w, r, result)
}

func (h *handlers) submit(r *http.Request) (*services.SubmitResult, error) {
	var in domain.NewContactMessage
	if err := response.Decode(r, &in); err != nil {
		return nil, err
	}
	return h.Contact.Submit(r.Context(), in)
}

func (h *handlers) listContactMessages(w http.ResponseWriter, r *http.Request) {
	list, err := h.Contact.Messages(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *handlers) markContactMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Contact.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, "Message marked as read")
}

// Uploads

func (h *handlers) parseUpload(w http.ResponseWriter, r *http.Request, field string, maxFiles int) ([]*multipart.FileHeader, error) {
	limit := h.Config.Upload.MaxBytes*int64(maxFiles) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.Config.Upload.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.UploadRejected("Upload exceeds the size limit")
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeBadRequest, "Invalid multipart form", err)
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, apperrors.BadRequest("No file uploaded")
	}
	if len(files) > maxFiles {
		return nil, apperrors.UploadRejected(fmt.Sprintf("At most %d files can be uploaded at once", maxFiles))
	}
	return files, nil
}

func (h *handlers) uploadSingle(w http.ResponseWriter, r *http.Request) {
	files, err := h.parseUpload(w, r, "image", 1)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, err := h.Uploads.Save(files[0])
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, file)
}

func (h *handlers) uploadMultiple(w http.ResponseWriter, r *http.Request) {
	files, err := h.parseUpload(w, r, "images", h.Config.Upload.MaxFiles)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	body := uploadsBody{Files: make([]*upload.File, 0, len(files))}
	for _, header := range files {
		file, err := h.Uploads.Save(header)
		if err != nil {
			// The batch fails as a whole; drop what was already written
			for _, saved := range body.Files {
				if rmErr := h.Uploads.Remove(saved.Filename); rmErr != nil {
					log.Printf("[UPLOAD] %v", rmErr)
				}
			}
			response.Error(w, r, err)
			return
		}
		body.Files = append(body.Files, file)
	}
	response.OK(w, r, body)
}
