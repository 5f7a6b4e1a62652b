package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MCQ is a multiple-choice question. It shares categories with Question but
// is otherwise an independent entity.
type MCQ struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	CreatedBy  string    `json:"created_by" gorm:"not null;index;size:255"`

	Title        string          `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Description  *string         `json:"description" gorm:"type:text"`
	QuestionText string          `json:"question_text" gorm:"type:text;not null" validate:"required"`
	Difficulty   DifficultyLevel `json:"difficulty" gorm:"default:medium;index"`

	// Options is a JSON array of exactly four strings; CorrectAnswer is the
	// 1-based index into it.
	Options        datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswer  int            `json:"correct_answer" gorm:"not null" validate:"min=1,max=4"`
	ShuffleOptions bool           `json:"shuffle_options" gorm:"default:false;not null"`
	Explanation    *string        `json:"explanation" gorm:"type:text"`

	MaxScore       int  `json:"max_score" gorm:"not null" validate:"min=1"`
	PartialScoring bool `json:"partial_scoring" gorm:"default:false;not null"`

	IsActive  bool           `json:"is_active" gorm:"default:true;index"`
	ExtraData datatypes.JSON `json:"extra_data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category *QuestionCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (MCQ) TableName() string {
	return "mcqs"
}
