package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"school_journal/internal/api/middleware"
	"school_journal/internal/app/service"
	"school_journal/internal/common"
	"school_journal/internal/domain/model"
	"school_journal/internal/platform/storage"
)

const maxUploadMemory = 32 << 20 // 32 MiB before spilling to disk

type JournalHandler struct {
	journalService *service.JournalService
	store          *storage.LocalStore
}

func NewJournalHandler(js *service.JournalService, store *storage.LocalStore) *JournalHandler {
	return &JournalHandler{journalService: js, store: store}
}

func (h *JournalHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/feed", h.feed) // any authenticated role

	r.Group(func(teacherRouter chi.Router) {
		teacherRouter.Use(middleware.RequireRole(model.RoleTeacher))
		teacherRouter.Post("/", h.createJournal)
		teacherRouter.Put("/{journalID}", h.updateJournal)
		teacherRouter.Delete("/{journalID}", h.deleteJournal)
		teacherRouter.Post("/{journalID}/publish", h.publishJournal)
	})
}

type createJournalResponse struct {
	JournalID string `json:"journalId"`
}

func (h *JournalHandler) createJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	publishedAt, err := parsePublishedAt(r.FormValue("published_at"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// student_ids arrives as a JSON-encoded array string. Anything that
	// decodes to a non-array is rejected before any row is inserted.
	var studentIDs []string
	if raw := r.FormValue("student_ids"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &studentIDs); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "student_ids must be a JSON array")
			return
		}
	}

	attachment, err := h.saveAttachment(r)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	journalID, err := h.journalService.Create(r.Context(), userID, service.CreateJournalRequest{
		Description: r.FormValue("description"),
		PublishedAt: publishedAt,
		StudentIDs:  studentIDs,
		Attachment:  attachment,
	})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, createJournalResponse{JournalID: journalID})
}

type updateJournalRequest struct {
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
}

func (h *JournalHandler) updateJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req updateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	publishedAt, err := parsePublishedAt(req.PublishedAt)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	journalID := chi.URLParam(r, "journalID")
	if err := h.journalService.Update(r.Context(), journalID, userID, req.Description, publishedAt); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *JournalHandler) deleteJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	journalID := chi.URLParam(r, "journalID")
	if err := h.journalService.Delete(r.Context(), journalID, userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *JournalHandler) publishJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	journalID := chi.URLParam(r, "journalID")
	if err := h.journalService.Publish(r.Context(), journalID, userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *JournalHandler) feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	role, ok := middleware.GetUserRoleFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	journals, err := h.journalService.Feed(r.Context(), userID, role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, journals)
}

// saveAttachment stores the optional "attachment" file part and returns
// its declared mime type and stored name. Nothing about the content is
// validated here.
func (h *JournalHandler) saveAttachment(r *http.Request) (*model.Attachment, error) {
	file, header, err := r.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, common.Errorf("reading attachment: %w", err)
	}
	defer file.Close()

	path, err := h.store.Save(file, header.Filename)
	if err != nil {
		return nil, err
	}
	return &model.Attachment{
		Type: header.Header.Get("Content-Type"),
		Path: path,
	}, nil
}

func parsePublishedAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, common.Errorf("published_at must be an RFC3339 timestamp: %w", common.ErrValidation)
	}
	return &t, nil
}
