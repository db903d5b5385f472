package model

// ScoreBucket 分数段统计
type ScoreBucket struct {
	Range string `json:"range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

type ScoreSummary struct {
	TotalGraded  int `json:"totalGraded"`
	AverageScore int `json:"averageScore"`
	HighestScore int `json:"highestScore"`
	PassRate     int `json:"passRate"`
	PassCount    int `json:"passCount"`
	FailCount    int `json:"failCount"`
}

type SubjectStat struct {
	SubjectID         uint   `json:"subjectId"`
	Name              string `json:"name"`
	TotalSubmissions  int    `json:"totalSubmissions"`
	GradedSubmissions int    `json:"gradedSubmissions"`
	AverageScore      int    `json:"averageScore"`
	PassRate          int    `json:"passRate"`
}

type AnalyticsReport struct {
	SubjectID    *uint         `json:"subjectId,omitempty"`
	PassScore    int           `json:"passScore"`
	Summary      ScoreSummary  `json:"summary"`
	Distribution []ScoreBucket `json:"distribution"`
	Subjects     []SubjectStat `json:"subjects"`
}

type DashboardStats struct {
	TotalQuestions     int64 `json:"totalQuestions"`
	TotalAssessments   int64 `json:"totalAssessments"`
	ActiveAssessments  int64 `json:"activeAssessments"`
	TotalStudents      int64 `json:"totalStudents"`
	PendingSubmissions int64 `json:"pendingSubmissions"`
	GradedSubmissions  int64 `json:"gradedSubmissions"`
	AverageScore       int   `json:"averageScore"`
}
