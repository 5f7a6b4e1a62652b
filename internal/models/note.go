package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteCategory string

const (
	NoteLectureNotes        NoteCategory = "lecture_notes"
	NoteAssignmentSolutions NoteCategory = "assignment_solutions"
	NoteReferenceMaterials  NoteCategory = "reference_materials"
	NoteExamPapers          NoteCategory = "exam_papers"
	NoteStudyGuides         NoteCategory = "study_guides"
	NotePresentations       NoteCategory = "presentations"
	NoteOther               NoteCategory = "other"
)

// UploadedNote is a course-scoped study-material record owned by a teacher
// and, when public, browsable by students enrolled in the course.
type UploadedNote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeacherID string    `json:"teacher_id" gorm:"not null;index;size:255"`
	CourseID  uuid.UUID `json:"course_id" gorm:"type:uuid;not null;index"`

	Title       string         `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Description *string        `json:"description" gorm:"type:text"`
	Category    NoteCategory   `json:"category" gorm:"size:50;not null;index"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	IsPublic    bool           `json:"is_public" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	NoteFiles []NoteFile `json:"note_files,omitempty" gorm:"foreignKey:NoteID"`
	Course    *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (UploadedNote) TableName() string {
	return "uploaded_notes"
}

type NoteFile struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteID uuid.UUID `json:"note_id" gorm:"type:uuid;not null;index"`

	Filename         string `json:"filename" gorm:"not null;size:255"`
	OriginalFilename string `json:"original_filename" gorm:"not null;size:255"`
	FileData         []byte `json:"-" gorm:"type:bytea;not null"`
	ContentType      string `json:"content_type" gorm:"not null;size:100"`
	FileSize         int    `json:"file_size" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (NoteFile) TableName() string {
	return "note_files"
}
