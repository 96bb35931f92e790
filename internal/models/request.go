package models

// DiagnoseRequest 一次诊断请求（HTTP、Redis Streams、MQTT、CLI 共用）
type DiagnoseRequest struct {
	RequestID string      `json:"request_id,omitempty"`
	PatientID string      `json:"patient_id,omitempty"`
	Vitals    VitalsInput `json:"vitals"`
}

// DiagnoseResult 异步通道（Streams/MQTT）上发布的诊断结果
type DiagnoseResult struct {
	RequestID string          `json:"request_id,omitempty"`
	PatientID string          `json:"patient_id,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Component string          `json:"component,omitempty"`
	Diagnosis *FinalDiagnosis `json:"diagnosis,omitempty"`
}
