package document

import (
	"github.com/estatecrm/api/internal/auth"
	"gorm.io/gorm"
)

// Folder groups documents under an owner and an optional share list.
type Folder struct {
	gorm.Model
	Name    string `json:"name"`
	OwnerID uint   `json:"ownerId" gorm:"index"`

	// User ids the folder is shared with, stored as JSONB
	SharedWithIDs []uint `json:"sharedWithIds" gorm:"type:jsonb;serializer:json"`

	// Deleting a folder cascades to its documents at the constraint level
	Documents []Document `json:"documents,omitempty" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

type Document struct {
	gorm.Model
	FolderID   uint   `json:"folderId" gorm:"index"`
	Name       string `json:"name"`
	FileURL    string `json:"fileUrl"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	UploadedBy uint   `json:"uploadedBy"`
	LeadID     *uint  `json:"leadId,omitempty" gorm:"index"`
}

// CanAccess applies the folder rule: admins, the owner and users on the
// share list.
func CanAccess(f *Folder, actor auth.Actor) bool {
	if actor.Role == auth.RoleAdmin || f.OwnerID == actor.ID {
		return true
	}
	for _, id := range f.SharedWithIDs {
		if id == actor.ID {
			return true
		}
	}
	return false
}
