package pipeline

import "gorm.io/gorm"

// Pipeline types.
const (
	TypeBuyer    = "BUYER"
	TypeSeller   = "SELLER"
	TypeInvestor = "INVESTOR"
	TypeRenter   = "RENTER"
)

// Names and colors of the two terminal stages appended to every pipeline.
const (
	StageClosedWon  = "Closed Won"
	StageClosedLost = "Closed Lost"
	colorWon        = "#22c55e"
	colorLost       = "#ef4444"
)

type Pipeline struct {
	gorm.Model
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	IsActive bool            `json:"isActive" gorm:"default:true"`
	Stages   []PipelineStage `json:"stages" gorm:"foreignKey:PipelineID;constraint:OnDelete:CASCADE"`
}

type PipelineStage struct {
	gorm.Model
	PipelineID  uint   `json:"pipelineId" gorm:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Order       int    `json:"order" gorm:"column:stage_order"`
	IsDefault   bool   `json:"isDefault"`
	IsFinal     bool   `json:"isFinal"`
}

// StageInput is a user-supplied stage at pipeline creation.
type StageInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// New builds a pipeline from the user stages, numbering them in array order
// and appending the Closed Won / Closed Lost pair last. The first user stage
// is the default.
func New(name, pipelineType string, stages []StageInput) *Pipeline {
	p := &Pipeline{Name: name, Type: pipelineType, IsActive: true}
	for i, in := range stages {
		p.Stages = append(p.Stages, PipelineStage{
			Name:        in.Name,
			Description: in.Description,
			Color:       in.Color,
			Order:       i,
			IsDefault:   i == 0,
		})
	}
	n := len(stages)
	p.Stages = append(p.Stages,
		PipelineStage{Name: StageClosedWon, Color: colorWon, Order: n, IsFinal: true},
		PipelineStage{Name: StageClosedLost, Color: colorLost, Order: n + 1, IsFinal: true},
	)
	return p
}

// ValidType reports whether t names a known pipeline type.
func ValidType(t string) bool {
	switch t {
	case TypeBuyer, TypeSeller, TypeInvestor, TypeRenter:
		return true
	}
	return false
}

// DefaultStage returns the stage new leads land in.
func (p *Pipeline) DefaultStage() *PipelineStage {
	for i := range p.Stages {
		if p.Stages[i].IsDefault {
			return &p.Stages[i]
		}
	}
	if len(p.Stages) > 0 {
		return &p.Stages[0]
	}
	return nil
}
