package model

import "time"

type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is immutable once attached to an exam.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"question"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectOption Option    `json:"correct_option,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	DefaultQuestionNumber  = 40
	DefaultDurationMinutes = 60
)

type Exam struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SubjectClassID string    `json:"subject_class_id"`
	TeacherID      string    `json:"teacher_id"`
	TermID         string    `json:"term_id"`
	QuestionIDs    []string  `json:"question_ids,omitempty"`
	QuestionNumber int       `json:"question_number"`
	StartTime      time.Time `json:"start_time"`
	Duration       int       `json:"duration"` // minutes
	Rescheduled    bool      `json:"rescheduled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Questions    []Question    `json:"questions,omitempty"`     // populated view
	SubjectClass *SubjectClass `json:"subject_class,omitempty"` // populated view
	Term         *Term         `json:"term,omitempty"`          // populated view
}

// StripCorrectOptions clears the answer key from the populated questions for
// student-facing reads.
func (e *Exam) StripCorrectOptions() {
	for i := range e.Questions {
		e.Questions[i].CorrectOption = ""
	}
}
