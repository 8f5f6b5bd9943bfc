package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"resume-wizard/internal/types"
)

// ResumeSubmission 简历提交/快照表。
// 一次上传对应一条记录，RecordJSON保存六轮抽取拼装出的结构化结果。
type ResumeSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey"`
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string         `gorm:"type:varchar(100)"`
	OriginalFilename    string         `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string         `gorm:"type:varchar(1024)"`
	RawFileMD5          string         `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	RawTextMD5          string         `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	CandidateName       string         `gorm:"type:varchar(255)"`
	CandidateEmail      string         `gorm:"type:varchar(255);index:idx_rs_candidate_email"`
	CandidatePhone      string         `gorm:"type:varchar(50)"`
	RecordJSON          datatypes.JSON `gorm:"type:json"`
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'PENDING_PARSING';index:idx_rs_processing_status"`
	ParserVersion       string         `gorm:"type:varchar(50)"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// SetRecord 将抽取结果序列化进RecordJSON，同时冗余候选人联系字段便于查询
func (r *ResumeSubmission) SetRecord(record *types.Resume) error {
	if record == nil {
		return nil
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	r.RecordJSON = datatypes.JSON(bytes)
	r.CandidateName = record.Name
	r.CandidateEmail = record.Email
	r.CandidatePhone = record.Phone
	return nil
}

// GetRecord 从RecordJSON反序列化抽取结果
func (r *ResumeSubmission) GetRecord() (*types.Resume, error) {
	if len(r.RecordJSON) == 0 {
		return nil, nil
	}
	var record types.Resume
	if err := json.Unmarshal(r.RecordJSON, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// TailoredResume 定制简历渲染记录表
type TailoredResume struct {
	RenderID       string    `gorm:"type:char(36);primaryKey"`
	SubmissionUUID string    `gorm:"type:char(36);not null;index:idx_tr_submission_uuid"`
	JobDescription string    `gorm:"type:text"`
	OutputPath     string    `gorm:"type:varchar(1024)"`
	Status         string    `gorm:"type:varchar(50);default:'PENDING'"`
	CreatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (TailoredResume) TableName() string {
	return "tailored_resumes"
}

// MapToJSON 把map[string]interface{}转为datatypes.JSON
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes), nil
}
