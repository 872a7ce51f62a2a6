package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/carelink/assessment/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type AssessmentModel struct {
	ID                      uuid.UUID                                    `gorm:"type:uuid;primaryKey"`
	PatientID               string                                       `gorm:"index;not null"`
	AssessmentType          string                                       `gorm:"not null"`
	Symptoms                datatypes.JSONSlice[string]                  `gorm:"type:jsonb"`
	Responses               datatypes.JSONMap                            `gorm:"type:jsonb"`
	AIAnalysis              datatypes.JSONType[models.AIHealthAnalysis]  `gorm:"type:jsonb;column:ai_analysis"`
	FollowUpRequired        bool
	FollowUpScheduled       bool
	ConsultationRecommended bool
	Status                  string `gorm:"index"`
	ReviewedBy              *string
	ReviewNotes             *string
	ReviewedAt              *time.Time
	CreatedAt               time.Time `gorm:"index"`
	UpdatedAt               time.Time
}

func (AssessmentModel) TableName() string {
	return "health_assessments"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AssessmentModel{})
}

func (r *Repository) CreateAssessment(ctx context.Context, record *models.HealthAssessment) error {
	row := toModel(*record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	*record = toDomain(row)
	return nil
}

func (r *Repository) GetAssessment(ctx context.Context, id uuid.UUID) (models.HealthAssessment, error) {
	var row AssessmentModel
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HealthAssessment{}, ErrAssessmentNotFound
		}
		return models.HealthAssessment{}, err
	}
	return toDomain(row), nil
}

func (r *Repository) ListAssessmentsByPatient(ctx context.Context, patientID string, limit, offset int) ([]models.HealthAssessment, error) {
	var rows []AssessmentModel
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]models.HealthAssessment, 0, len(rows))
	for _, row := range rows {
		records = append(records, toDomain(row))
	}
	return records, nil
}

func toModel(record models.HealthAssessment) AssessmentModel {
	return AssessmentModel{
		ID:                      record.ID,
		PatientID:               record.PatientID,
		AssessmentType:          string(record.AssessmentType),
		Symptoms:                datatypes.NewJSONSlice(record.Symptoms),
		Responses:               datatypes.JSONMap(record.Responses),
		AIAnalysis:              datatypes.NewJSONType(record.AIAnalysis),
		FollowUpRequired:        record.FollowUpRequired,
		FollowUpScheduled:       record.FollowUpScheduled,
		ConsultationRecommended: record.ConsultationRecommended,
		Status:                  string(record.Status),
		ReviewedBy:              record.ReviewedBy,
		ReviewNotes:             record.ReviewNotes,
		ReviewedAt:              record.ReviewedAt,
		CreatedAt:               record.CreatedAt,
	}
}

func toDomain(row AssessmentModel) models.HealthAssessment {
	return models.HealthAssessment{
		ID:                      row.ID,
		PatientID:               row.PatientID,
		AssessmentType:          models.AssessmentType(row.AssessmentType),
		Symptoms:                []string(row.Symptoms),
		Responses:               map[string]interface{}(row.Responses),
		AIAnalysis:              row.AIAnalysis.Data(),
		FollowUpRequired:        row.FollowUpRequired,
		FollowUpScheduled:       row.FollowUpScheduled,
		ConsultationRecommended: row.ConsultationRecommended,
		Status:                  models.AssessmentStatus(row.Status),
		ReviewedBy:              row.ReviewedBy,
		ReviewNotes:             row.ReviewNotes,
		ReviewedAt:              row.ReviewedAt,
		CreatedAt:               row.CreatedAt,
	}
}
