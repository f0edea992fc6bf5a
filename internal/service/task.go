package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

// Actions tasks can track.
const (
	ActionDraw  = "draw"
	ActionSign  = "sign"
	ActionDuel  = "duel"
	ActionBuy   = "buy"
	ActionGift  = "gift"
	ActionCraft = "craft"
	ActionWork  = "work"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadTaskDefs reads the task catalog from a JSON file. A UTF-8 BOM
// prefix is tolerated.
func LoadTaskDefs(path string) ([]model.TaskDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task catalog: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var defs []model.TaskDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse task catalog %s: %w", path, err)
	}
	for _, d := range defs {
		if !strings.HasPrefix(d.ID, model.DailyTaskPrefix) && !strings.HasPrefix(d.ID, model.WeeklyTaskPrefix) {
			return nil, fmt.Errorf("task catalog %s: id %q must carry a daily_ or weekly_ prefix", path, d.ID)
		}
		if d.Target < 1 {
			return nil, fmt.Errorf("task catalog %s: task %q has no target", path, d.ID)
		}
	}
	return defs, nil
}

// TaskService assigns tasks and advances them from recorded actions.
type TaskService struct {
	users repository.UserRepository
	defs  map[string]model.TaskDef
	order []string
	rng   RandomSource
	log   *zap.SugaredLogger
}

// NewTaskService creates a task service over a loaded catalog.
func NewTaskService(users repository.UserRepository, defs []model.TaskDef, rng RandomSource, log *zap.SugaredLogger) *TaskService {
	s := &TaskService{
		users: users,
		defs:  make(map[string]model.TaskDef, len(defs)),
		rng:   rng,
		log:   log,
	}
	for _, d := range defs {
		s.defs[d.ID] = d
		s.order = append(s.order, d.ID)
	}
	return s
}

// ensureAssigned seeds the user's progress buckets with every catalog task
// not yet present. Progress already made is never disturbed.
func (s *TaskService) ensureAssigned(u *model.UserRecord) {
	for _, id := range s.order {
		d := s.defs[id]
		bucket := u.Quest.Weekly
		if d.Daily() {
			bucket = u.Quest.Daily
		}
		if _, ok := bucket[id]; !ok {
			bucket[id] = &model.TaskProgress{Target: d.Target}
		}
	}
}

// Assign seeds the user's buckets with every catalog task they are
// missing and returns the ids that were newly assigned.
func (s *TaskService) Assign(ctx context.Context, userID string) ([]string, error) {
	var added []string
	_, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		for _, id := range s.order {
			d := s.defs[id]
			bucket := u.Quest.Weekly
			if d.Daily() {
				bucket = u.Quest.Daily
			}
			if _, ok := bucket[id]; !ok {
				added = append(added, id)
			}
		}
		s.ensureAssigned(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Status returns the user's tasks with live progress, assigning any the
// user does not have yet.
func (s *TaskService) Status(ctx context.Context, userID string) ([]model.TaskStatus, error) {
	rec, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		s.ensureAssigned(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []model.TaskStatus
	for _, id := range s.order {
		d := s.defs[id]
		bucket := rec.Quest.Weekly
		if d.Daily() {
			bucket = rec.Quest.Daily
		}
		p := bucket[id]
		out = append(out, model.TaskStatus{
			Task:     d,
			Current:  p.Current,
			Target:   p.Target,
			Complete: p.Current >= p.Target,
		})
	}
	return out, nil
}

// RecordAction advances every incomplete task tracking the action and pays
// out any that complete as a result. Advancement and payout land in the
// same write as the rest of the user's mutation.
func (s *TaskService) RecordAction(ctx context.Context, userID, action string, times int) (*model.ActionReport, error) {
	if times < 1 {
		times = 1
	}
	report := &model.ActionReport{UserID: userID, Action: action}

	rec, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		s.ensureAssigned(u)
		s.advance(u, action, times, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.MoneyNow = rec.Home.Money
	if len(report.Completed) > 0 {
		s.log.Infow("tasks completed", "user", userID, "action", action, "count", len(report.Completed))
	}
	return report, nil
}

// advance applies the action against the record in place. Runs inside the
// caller's Update so progress and payout share one write.
func (s *TaskService) advance(u *model.UserRecord, action string, times int, report *model.ActionReport) {
	for _, id := range s.order {
		d := s.defs[id]
		if d.Action != action {
			continue
		}
		bucket := u.Quest.Weekly
		if d.Daily() {
			bucket = u.Quest.Daily
		}
		p := bucket[id]
		if p == nil || p.Current >= p.Target {
			continue
		}
		p.Current += times
		if p.Current > p.Target {
			p.Current = p.Target
		}
		report.Advanced = append(report.Advanced, id)

		if p.Current >= p.Target {
			u.Home.Money += d.RewardMoney
			u.Battle.Experience += d.RewardExp
			applyLevelUps(u.Battle)
			if d.RewardItem != "" {
				u.Items[d.RewardItem]++
			}
			u.Quest.QuestPoints++
			report.Completed = append(report.Completed, model.TaskReward{
				TaskID: id,
				Money:  d.RewardMoney,
				Exp:    d.RewardExp,
				Item:   d.RewardItem,
			})
		}
	}
}

// Work performs the work action: a small randomized wage plus task
// progress, all in one write.
func (s *TaskService) Work(ctx context.Context, userID string) (*model.ActionReport, error) {
	report := &model.ActionReport{UserID: userID, Action: ActionWork}
	wage := 10 + int(s.rng.Float64()*21) // 10-30

	rec, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		s.ensureAssigned(u)
		u.Home.Money += wage
		s.advance(u, ActionWork, 1, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.MoneyNow = rec.Home.Money
	s.log.Infow("work shift complete", "user", userID, "wage", wage)
	return report, nil
}

// ResetDaily clears daily progress for every user. Called by the
// scheduler at local midnight.
func (s *TaskService) ResetDaily(ctx context.Context, day string) error {
	return s.resetBucket(ctx, day, true)
}

// ResetWeekly clears weekly progress for every user.
func (s *TaskService) ResetWeekly(ctx context.Context, day string) error {
	return s.resetBucket(ctx, day, false)
}

func (s *TaskService) resetBucket(ctx context.Context, day string, daily bool) error {
	ids, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	var failed int
	for _, id := range ids {
		_, err := s.users.Update(ctx, id, func(u *model.UserRecord) error {
			if daily {
				u.Quest.Daily = make(map[string]*model.TaskProgress)
				u.Quest.LastDailyReset = day
			} else {
				u.Quest.Weekly = make(map[string]*model.TaskProgress)
				u.Quest.LastWeeklyReset = day
			}
			s.ensureAssigned(u)
			return nil
		})
		if err != nil {
			failed++
			s.log.Warnw("task reset failed for user", "user", id, "error", err)
		}
	}
	if failed > 0 {
		return apierror.InternalError(fmt.Sprintf("task reset failed for %d users", failed))
	}
	s.log.Infow("task reset complete", "daily", daily, "users", len(ids))
	return nil
}
