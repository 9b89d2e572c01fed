package lead

import (
	"strings"

	"github.com/estatecrm/api/internal/pipeline"
	"gorm.io/gorm"
)

// StageCount is one kanban column's numbers.
type StageCount struct {
	StageID   uint   `json:"stageId"`
	StageName string `json:"stageName"`
	IsFinal   bool   `json:"isFinal"`
	Count     int64  `json:"count"`
}

// CampaignStats is the read-only aggregate for one campaign.
type CampaignStats struct {
	CampaignID     uint         `json:"campaignId"`
	TotalLeads     int64        `json:"totalLeads"`
	WonLeads       int64        `json:"wonLeads"`
	LostLeads      int64        `json:"lostLeads"`
	ConversionRate float64      `json:"conversionRate"`
	Stages         []StageCount `json:"stages"`
}

// activeStageCount counts the leads shown for a stage. Final stages count
// archived leads, non-final stages don't: an archived deal keeps its won or
// lost outcome but disappears from the active board.
func activeStageCount(db *gorm.DB, campaignID uint, stage *pipeline.PipelineStage) (int64, error) {
	q := db.Model(&Lead{}).
		Where("campaign_id = ? AND current_stage_id = ?", campaignID, stage.ID)
	if !stage.IsFinal {
		q = q.Where("is_archived = ?", false)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// Stats aggregates stage counts and conversion rate for a campaign whose
// pipeline stages are given. Conversion rate is won leads over all leads,
// both regardless of archive state.
func Stats(db *gorm.DB, campaignID uint, stages []pipeline.PipelineStage) (*CampaignStats, error) {
	stats := &CampaignStats{CampaignID: campaignID}

	var total int64
	err := db.Model(&Lead{}).Where("campaign_id = ?", campaignID).Count(&total).Error
	if err != nil {
		return nil, err
	}
	stats.TotalLeads = total

	for i := range stages {
		stage := &stages[i]
		count, err := activeStageCount(db, campaignID, stage)
		if err != nil {
			return nil, err
		}
		stats.Stages = append(stats.Stages, StageCount{
			StageID:   stage.ID,
			StageName: stage.Name,
			IsFinal:   stage.IsFinal,
			Count:     count,
		})
		if stage.IsFinal {
			if strings.Contains(strings.ToLower(stage.Name), "won") {
				stats.WonLeads += count
			} else {
				stats.LostLeads += count
			}
		}
	}

	if total > 0 {
		stats.ConversionRate = float64(stats.WonLeads) / float64(total)
	}
	return stats, nil
}
