package document

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type folderRequest struct {
	Name string `json:"name"`
}

type shareRequest struct {
	SharedWithIDs []uint `json:"sharedWithIds"`
}

type documentRequest struct {
	Name      string `json:"name"`
	FileURL   string `json:"fileUrl"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	LeadID    *uint  `json:"leadId"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	f := Folder{Name: req.Name, OwnerID: auth.ActorFrom(r).ID}
	if err := h.Repository.CreateFolder(h.DB, &f); err != nil {
		apperror.Write(w, apperror.Internal("could not save folder"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, f)
}

// ListFolders returns the folders the actor owns or can see.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	folders, err := h.Repository.ListFolders(h.DB)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list folders"))
		return
	}
	visible := folders[:0]
	for i := range folders {
		if CanAccess(&folders[i], actor) {
			visible = append(visible, folders[i])
		}
	}
	utils.RespondJSON(w, http.StatusOK, visible)
}

func (h *Handler) folderForActor(r *http.Request) (*Folder, error) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		return nil, apperror.Validation("invalid id")
	}
	f, err := h.Repository.FindFolder(h.DB, id)
	if err != nil {
		return nil, apperror.NotFound("folder not found")
	}
	if !CanAccess(f, auth.ActorFrom(r)) {
		return nil, apperror.AccessDenied("access denied to folder")
	}
	return f, nil
}

func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, f)
}

// ShareFolder replaces the folder's share list. Only the owner or an admin
// may share.
func (h *Handler) ShareFolder(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if actor.Role != auth.RoleAdmin && f.OwnerID != actor.ID {
		apperror.Write(w, apperror.AccessDenied("only the owner can share a folder"))
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	f.SharedWithIDs = req.SharedWithIDs
	if err := h.Repository.SaveFolder(h.DB, f); err != nil {
		apperror.Write(w, apperror.Internal("could not save folder"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, f)
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if actor.Role != auth.RoleAdmin && f.OwnerID != actor.ID {
		apperror.Write(w, apperror.AccessDenied("only the owner can delete a folder"))
		return
	}
	if err := h.Repository.DeleteFolder(h.DB, f.ID); err != nil {
		apperror.Write(w, apperror.Internal("could not delete folder"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	d := Document{
		FolderID:   f.ID,
		Name:       req.Name,
		FileURL:    req.FileURL,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		UploadedBy: auth.ActorFrom(r).ID,
		LeadID:     req.LeadID,
	}
	if err := h.Repository.CreateDocument(h.DB, &d); err != nil {
		apperror.Write(w, apperror.Internal("could not save document"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, d)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	documents, err := h.Repository.ListDocuments(h.DB, f.ID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list documents"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, documents)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	f, err := h.folderForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	docID, ok := utils.PathID(r, "docId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid document id"))
		return
	}
	d, err := h.Repository.FindDocument(h.DB, docID)
	if err != nil || d.FolderID != f.ID {
		apperror.Write(w, apperror.NotFound("document not found"))
		return
	}
	if err := h.Repository.DeleteDocument(h.DB, docID); err != nil {
		apperror.Write(w, apperror.Internal("could not delete document"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
