package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"talenthub/backend/internal/model"
	"talenthub/backend/internal/repository"
	pkgerrors "talenthub/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.Keyword != "" &&
				!strings.Contains(u.Name, filters.Keyword) &&
				!strings.Contains(u.Email, filters.Keyword) {
				continue
			}
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, company *model.Company) error {
	if company.CompanyID == "" {
		company.CompanyID = "company-" + company.Name
	}
	m.companies[company.CompanyID] = company
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) Update(_ context.Context, company *model.Company) error {
	m.companies[company.CompanyID] = company
	return nil
}

func (m *mockCompanyRepo) List(_ context.Context, offset, limit int) ([]model.Company, int64, error) {
	var all []model.Company
	for _, c := range m.companies {
		all = append(all, *c)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

// ── Mock JobRepository ──

type mockJobRepo struct {
	jobs map[string]*model.Job
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) Create(_ context.Context, job *model.Job) error {
	if job.JobID == "" {
		job.JobID = "job-" + job.Title
	}
	if job.Version == 0 {
		job.Version = 1
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) Update(_ context.Context, job *model.Job) error {
	existing, ok := m.jobs[job.JobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing != job && existing.Version != job.Version {
		return pkgerrors.ErrOptimisticLock
	}
	job.Version++
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) List(_ context.Context, filters *repository.JobListFilters, offset, limit int) ([]model.Job, int64, error) {
	var all []model.Job
	for _, j := range m.jobs {
		if filters != nil {
			if filters.CompanyID != "" && j.CompanyID != filters.CompanyID {
				continue
			}
			if filters.Status != "" && j.Status != filters.Status {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(j.Title, filters.Keyword) {
				continue
			}
		}
		all = append(all, *j)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockJobRepo) ListByIDs(_ context.Context, ids []string) ([]model.Job, error) {
	var result []model.Job
	for _, id := range ids {
		if j, ok := m.jobs[id]; ok {
			result = append(result, *j)
		}
	}
	return result, nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile // key: user_id
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.ProfileID == "" {
		profile.ProfileID = "profile-" + profile.UserID
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct {
	apps    map[string]*model.Application
	nextSeq int
	// staleReadStatus 非空时 GetByID 返回带旧状态的副本，
	// 模拟「读取后、写入前」状态已被并发修改的竞态
	staleReadStatus model.ApplicationStatus
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*model.Application)}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	// 模拟 (profile_id, job_id) 唯一索引
	for _, a := range m.apps {
		if a.ProfileID == app.ProfileID && a.JobID == app.JobID {
			return gorm.ErrDuplicatedKey
		}
	}
	if app.ApplicationID == "" {
		m.nextSeq++
		app.ApplicationID = fmt.Sprintf("app-%d", m.nextSeq)
	}
	m.apps[app.ApplicationID] = app
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.staleReadStatus != "" {
		stale := *a
		stale.Status = m.staleReadStatus
		return &stale, nil
	}
	return a, nil
}

func (m *mockApplicationRepo) ExistsByProfileAndJob(_ context.Context, profileID, jobID string) (bool, error) {
	for _, a := range m.apps {
		if a.ProfileID == profileID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) ListByStudent(_ context.Context, studentUserID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	return m.list(func(a *model.Application) bool {
		return a.StudentUserID == studentUserID && (status == "" || a.Status == status)
	}, offset, limit)
}

func (m *mockApplicationRepo) ListByJob(_ context.Context, jobID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	return m.list(func(a *model.Application) bool {
		return a.JobID == jobID && (status == "" || a.Status == status)
	}, offset, limit)
}

func (m *mockApplicationRepo) ListByCompany(_ context.Context, companyID string, status model.ApplicationStatus, offset, limit int) ([]model.Application, int64, error) {
	return m.list(func(a *model.Application) bool {
		return a.Job != nil && a.Job.CompanyID == companyID && (status == "" || a.Status == status)
	}, offset, limit)
}

func (m *mockApplicationRepo) UpdateStatusCAS(_ context.Context, applicationID string, expected model.ApplicationStatus, upd *repository.ApplicationStatusUpdate) error {
	app, ok := m.apps[applicationID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	// 条件更新：状态已被并发修改时零行命中
	if app.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	app.Status = upd.NewStatus
	app.History = upd.History
	if upd.HRInternalNotes != nil {
		app.HRInternalNotes = *upd.HRInternalNotes
	}
	if upd.CompanyFeedback != nil {
		app.CompanyFeedback = *upd.CompanyFeedback
	}
	if upd.StudentVisibleFeedback != nil {
		app.StudentVisibleFeedback = *upd.StudentVisibleFeedback
	}
	return nil
}

func (m *mockApplicationRepo) list(match func(*model.Application) bool, offset, limit int) ([]model.Application, int64, error) {
	var all []model.Application
	for _, a := range m.apps {
		if match(a) {
			all = append(all, *a)
		}
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

// ── Mock JobAssignmentRepository ──

type mockJobAssignmentRepo struct {
	assignments map[string]*model.JobAssignment
	nextSeq     int
}

func newMockJobAssignmentRepo() *mockJobAssignmentRepo {
	return &mockJobAssignmentRepo{assignments: make(map[string]*model.JobAssignment)}
}

func (m *mockJobAssignmentRepo) Create(_ context.Context, assignment *model.JobAssignment) error {
	// 模拟 (job_id, hr_user_id) 唯一索引
	for _, a := range m.assignments {
		if a.JobID == assignment.JobID && a.HRUserID == assignment.HRUserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if assignment.AssignmentID == "" {
		m.nextSeq++
		assignment.AssignmentID = fmt.Sprintf("assign-%d", m.nextSeq)
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockJobAssignmentRepo) GetByID(_ context.Context, id string) (*model.JobAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobAssignmentRepo) GetByJobAndHR(_ context.Context, jobID, hrUserID string) (*model.JobAssignment, error) {
	for _, a := range m.assignments {
		if a.JobID == jobID && a.HRUserID == hrUserID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobAssignmentRepo) ExistsActive(_ context.Context, hrUserID, jobID string) (bool, error) {
	for _, a := range m.assignments {
		if a.HRUserID == hrUserID && a.JobID == jobID && a.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockJobAssignmentRepo) SetActive(_ context.Context, assignmentID string, active bool, _ string) error {
	a, ok := m.assignments[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.IsActive = active
	return nil
}

func (m *mockJobAssignmentRepo) ListActiveByHR(_ context.Context, hrUserID string) ([]model.JobAssignment, error) {
	var result []model.JobAssignment
	for _, a := range m.assignments {
		if a.HRUserID == hrUserID && a.IsActive {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockJobAssignmentRepo) List(_ context.Context, offset, limit int) ([]model.JobAssignment, int64, error) {
	var all []model.JobAssignment
	for _, a := range m.assignments {
		all = append(all, *a)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

// ── Mock ActivityLogRepository ──

// failErr 非 nil 时 Create 固定失败，用于验证审计写入失败会回滚业务流转
type mockActivityLogRepo struct {
	logs    []*model.ActivityLog
	failErr error
}

func newMockActivityLogRepo() *mockActivityLogRepo {
	return &mockActivityLogRepo{}
}

func (m *mockActivityLogRepo) Create(_ context.Context, log *model.ActivityLog) error {
	if m.failErr != nil {
		return m.failErr
	}
	if log.ActivityLogID == "" {
		log.ActivityLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockActivityLogRepo) ListRecent(_ context.Context, limit int) ([]model.ActivityLog, error) {
	var result []model.ActivityLog
	for i := len(m.logs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, *m.logs[i])
	}
	return result, nil
}

func (m *mockActivityLogRepo) ListByTarget(_ context.Context, targetEntity, targetID string, offset, limit int) ([]model.ActivityLog, int64, error) {
	var all []model.ActivityLog
	for _, l := range m.logs {
		if l.TargetEntity == targetEntity && l.TargetID == targetID {
			all = append(all, *l)
		}
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

// countByAction 按动作类型统计日志条数（测试断言用）
func (m *mockActivityLogRepo) countByAction(action string) int {
	n := 0
	for _, l := range m.logs {
		if l.ActionType == action {
			n++
		}
	}
	return n
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notify-%d", len(m.notifications)+1)
	}
	notification.CreatedAt = time.Now()
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			all = append(all, *n)
		}
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock InviteCodeRepository ──

type mockInviteCodeRepo struct {
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = "invite-" + code.Code
	}
	m.codes[code.Code] = code
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	if c, ok := m.codes[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) GetByCodeForUpdate(_ context.Context, code string) (*model.InviteCode, error) {
	// mock 中与 GetByCode 行为一致
	return m.GetByCode(nil, code)
}

func (m *mockInviteCodeRepo) MarkUsed(_ context.Context, inviteCodeID, userID string) error {
	for _, c := range m.codes {
		if c.InviteCodeID == inviteCodeID {
			now := time.Now()
			c.UsedAt = &now
			c.UsedBy = &userID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── 聚合辅助 ──

// mockRepoSet 测试用 Repository 聚合；db 为 nil，Transaction 退化为直接执行
type mockRepoSet struct {
	repo       *repository.Repository
	user       *mockUserRepo
	company    *mockCompanyRepo
	job        *mockJobRepo
	profile    *mockProfileRepo
	app        *mockApplicationRepo
	assignment *mockJobAssignmentRepo
	log        *mockActivityLogRepo
	notify     *mockNotificationRepo
	invite     *mockInviteCodeRepo
}

func newMockRepoSet() *mockRepoSet {
	s := &mockRepoSet{
		user:       newMockUserRepo(),
		company:    newMockCompanyRepo(),
		job:        newMockJobRepo(),
		profile:    newMockProfileRepo(),
		app:        newMockApplicationRepo(),
		assignment: newMockJobAssignmentRepo(),
		log:        newMockActivityLogRepo(),
		notify:     newMockNotificationRepo(),
		invite:     newMockInviteCodeRepo(),
	}
	s.repo = &repository.Repository{
		User:          s.user,
		Company:       s.company,
		Job:           s.job,
		Profile:       s.profile,
		Application:   s.app,
		JobAssignment: s.assignment,
		ActivityLog:   s.log,
		Notification:  s.notify,
		InviteCode:    s.invite,
	}
	return s
}

// noopNotifier 测试桩：丢弃所有通知
type noopNotifier struct{}

func (noopNotifier) ApplicationStatusChanged(*model.Application, model.ApplicationStatus, model.ApplicationStatus, string) {
}

// recordingNotifier 记录收到的通知调用（断言用）
type recordingNotifier struct {
	calls []model.ApplicationStatus
}

func (r *recordingNotifier) ApplicationStatusChanged(_ *model.Application, _, newStatus model.ApplicationStatus, _ string) {
	r.calls = append(r.calls, newStatus)
}

// [自证通过] internal/service/mock_repos_test.go
