package document

import "gorm.io/gorm"

type Repository interface {
	CreateFolder(db *gorm.DB, f *Folder) error
	FindFolder(db *gorm.DB, id uint) (*Folder, error)
	ListFolders(db *gorm.DB) ([]Folder, error)
	SaveFolder(db *gorm.DB, f *Folder) error
	DeleteFolder(db *gorm.DB, id uint) error

	CreateDocument(db *gorm.DB, d *Document) error
	FindDocument(db *gorm.DB, id uint) (*Document, error)
	ListDocuments(db *gorm.DB, folderID uint) ([]Document, error)
	DeleteDocument(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) CreateFolder(db *gorm.DB, f *Folder) error {
	return db.Create(f).Error
}

func (r *repositoryImpl) FindFolder(db *gorm.DB, id uint) (*Folder, error) {
	var f Folder
	err := db.Preload("Documents").First(&f, id).Error
	return &f, err
}

func (r *repositoryImpl) ListFolders(db *gorm.DB) ([]Folder, error) {
	var folders []Folder
	err := db.Order("name").Find(&folders).Error
	return folders, err
}

func (r *repositoryImpl) SaveFolder(db *gorm.DB, f *Folder) error {
	return db.Save(f).Error
}

// DeleteFolder removes the folder and, through the FK constraint, its
// documents. The explicit delete covers soft-deleted GORM rows too.
func (r *repositoryImpl) DeleteFolder(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ?", id).Delete(&Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Folder{}, id).Error
	})
}

func (r *repositoryImpl) CreateDocument(db *gorm.DB, d *Document) error {
	return db.Create(d).Error
}

func (r *repositoryImpl) FindDocument(db *gorm.DB, id uint) (*Document, error) {
	var d Document
	err := db.First(&d, id).Error
	return &d, err
}

func (r *repositoryImpl) ListDocuments(db *gorm.DB, folderID uint) ([]Document, error) {
	var documents []Document
	err := db.Where("folder_id = ?", folderID).Order("name").Find(&documents).Error
	return documents, err
}

func (r *repositoryImpl) DeleteDocument(db *gorm.DB, id uint) error {
	return db.Delete(&Document{}, id).Error
}
