package pipeline

import (
	"errors"

	"gorm.io/gorm"
)

// ErrStageHasLeads is returned when deleting a stage that leads still occupy.
var ErrStageHasLeads = errors.New("stage has leads assigned")

// ErrStageIsFinal is returned when deleting one of the terminal stages.
var ErrStageIsFinal = errors.New("terminal stages cannot be deleted")

type Repository interface {
	Create(db *gorm.DB, p *Pipeline) error
	FindByID(db *gorm.DB, id uint) (*Pipeline, error)
	ListAll(db *gorm.DB) ([]Pipeline, error)
	Update(db *gorm.DB, id uint, updated *Pipeline) error

	FindStage(db *gorm.DB, id uint) (*PipelineStage, error)
	FindStageInPipeline(db *gorm.DB, pipelineID, stageID uint) (*PipelineStage, error)
	AddStage(db *gorm.DB, pipelineID uint, s *PipelineStage, order *int) error
	ReorderStage(db *gorm.DB, stageID uint, newOrder int) error
	UpdateStage(db *gorm.DB, s *PipelineStage) error
	DeleteStage(db *gorm.DB, stageID uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, p *Pipeline) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Pipeline, error) {
	var p Pipeline
	err := db.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("stage_order")
	}).First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Pipeline, error) {
	var pipelines []Pipeline
	err := db.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("stage_order")
	}).Find(&pipelines).Error
	return pipelines, err
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, updated *Pipeline) error {
	var existing Pipeline
	if err := db.First(&existing, id).Error; err != nil {
		return err
	}
	existing.Name = updated.Name
	existing.Type = updated.Type
	existing.IsActive = updated.IsActive
	return db.Save(&existing).Error
}

func (r *repositoryImpl) FindStage(db *gorm.DB, id uint) (*PipelineStage, error) {
	var s PipelineStage
	err := db.First(&s, id).Error
	return &s, err
}

func (r *repositoryImpl) FindStageInPipeline(db *gorm.DB, pipelineID, stageID uint) (*PipelineStage, error) {
	var s PipelineStage
	err := db.Where("pipeline_id = ?", pipelineID).First(&s, stageID).Error
	return &s, err
}

// AddStage inserts a stage at the requested order, clamped so it always
// lands before the terminal pair. Existing stages at or past the insertion
// point shift up to keep the order range dense.
func (r *repositoryImpl) AddStage(db *gorm.DB, pipelineID uint, s *PipelineStage, order *int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		row := tx.Model(&PipelineStage{}).
			Where("pipeline_id = ?", pipelineID).
			Select("COALESCE(MAX(stage_order), -1)").
			Row()
		if err := row.Scan(&maxOrder); err != nil {
			return err
		}

		var firstFinal int
		row = tx.Model(&PipelineStage{}).
			Where("pipeline_id = ? AND is_final = ?", pipelineID, true).
			Select("COALESCE(MIN(stage_order), ?)", maxOrder+1).
			Row()
		if err := row.Scan(&firstFinal); err != nil {
			return err
		}

		newOrder := firstFinal
		if order != nil && *order < firstFinal {
			newOrder = *order
			if newOrder < 0 {
				newOrder = 0
			}
		}

		err := tx.Model(&PipelineStage{}).
			Where("pipeline_id = ? AND stage_order >= ?", pipelineID, newOrder).
			UpdateColumn("stage_order", gorm.Expr("stage_order + 1")).Error
		if err != nil {
			return err
		}

		s.PipelineID = pipelineID
		s.Order = newOrder
		return tx.Create(s).Error
	})
}

// ReorderStage moves a stage to newOrder, shifting every stage between the
// old and new position by one so orders stay contiguous and unique. Targets
// outside the pipeline's order range are clamped to its ends.
func (r *repositoryImpl) ReorderStage(db *gorm.DB, stageID uint, newOrder int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var s PipelineStage
		if err := tx.First(&s, stageID).Error; err != nil {
			return err
		}

		var maxOrder int
		row := tx.Model(&PipelineStage{}).
			Where("pipeline_id = ?", s.PipelineID).
			Select("COALESCE(MAX(stage_order), 0)").
			Row()
		if err := row.Scan(&maxOrder); err != nil {
			return err
		}
		if newOrder < 0 {
			newOrder = 0
		}
		if newOrder > maxOrder {
			newOrder = maxOrder
		}

		oldOrder := s.Order
		if newOrder == oldOrder {
			return nil
		}

		if newOrder < oldOrder {
			err := tx.Model(&PipelineStage{}).
				Where("pipeline_id = ? AND stage_order >= ? AND stage_order < ?", s.PipelineID, newOrder, oldOrder).
				UpdateColumn("stage_order", gorm.Expr("stage_order + 1")).Error
			if err != nil {
				return err
			}
		} else {
			err := tx.Model(&PipelineStage{}).
				Where("pipeline_id = ? AND stage_order > ? AND stage_order <= ?", s.PipelineID, oldOrder, newOrder).
				UpdateColumn("stage_order", gorm.Expr("stage_order - 1")).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&PipelineStage{}).
			Where("id = ?", stageID).
			UpdateColumn("stage_order", newOrder).Error
	})
}

func (r *repositoryImpl) UpdateStage(db *gorm.DB, s *PipelineStage) error {
	return db.Save(s).Error
}

// DeleteStage removes a stage and closes the gap in the order range. It
// fails with ErrStageIsFinal for the terminal pair and with
// ErrStageHasLeads when any lead still references the stage. The lead
// count is a table query rather than an import of the lead package, which
// sits above this one.
func (r *repositoryImpl) DeleteStage(db *gorm.DB, stageID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var s PipelineStage
		if err := tx.First(&s, stageID).Error; err != nil {
			return err
		}
		if s.IsFinal {
			return ErrStageIsFinal
		}

		var count int64
		err := tx.Table("leads").
			Where("current_stage_id = ? AND deleted_at IS NULL", stageID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrStageHasLeads
		}

		if err := tx.Delete(&PipelineStage{}, stageID).Error; err != nil {
			return err
		}
		return tx.Model(&PipelineStage{}).
			Where("pipeline_id = ? AND stage_order > ?", s.PipelineID, s.Order).
			UpdateColumn("stage_order", gorm.Expr("stage_order - 1")).Error
	})
}
