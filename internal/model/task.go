package model

// Task cadence prefixes. A task id carries its cadence so progress can be
// routed to the right reset bucket.
const (
	DailyTaskPrefix  = "daily_"
	WeeklyTaskPrefix = "weekly_"
)

// TaskDef is one task from the catalog.
type TaskDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Target      int    `json:"target"`
	RewardMoney int    `json:"reward_money"`
	RewardExp   int    `json:"reward_exp"`
	RewardItem  string `json:"reward_item,omitempty"`
}

// Daily reports whether the task resets every day.
func (t TaskDef) Daily() bool {
	return len(t.ID) >= len(DailyTaskPrefix) && t.ID[:len(DailyTaskPrefix)] == DailyTaskPrefix
}

// TaskStatus pairs a definition with the user's live progress.
type TaskStatus struct {
	Task     TaskDef `json:"task"`
	Current  int     `json:"current"`
	Target   int     `json:"target"`
	Complete bool    `json:"complete"`
}

// TaskReward summarizes the payout of one completed task.
type TaskReward struct {
	TaskID string `json:"task_id"`
	Money  int    `json:"money"`
	Exp    int    `json:"exp"`
	Item   string `json:"item,omitempty"`
}

// ActionReport is the result of recording a gameplay action: progress moved
// and any tasks that completed as a consequence.
type ActionReport struct {
	UserID    string       `json:"user_id"`
	Action    string       `json:"action"`
	Advanced  []string     `json:"advanced"`
	Completed []TaskReward `json:"completed"`
	MoneyNow  int          `json:"money_now"`
}
