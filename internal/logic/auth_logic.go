package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthLogic 认证业务逻辑
type AuthLogic struct {
	db  *gorm.DB
	cfg config.AuthConfig
}

// NewAuthLogic 创建认证业务逻辑
func NewAuthLogic(db *gorm.DB, cfg config.AuthConfig) *AuthLogic {
	return &AuthLogic{db: db, cfg: cfg}
}

// Claims JWT载荷
type Claims struct {
	UserId int64          `json:"user_id"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Register 注册用户
func (a *AuthLogic) Register(username, email, password string, role model.UserRole) (string, *model.User, error) {
	if username == "" || email == "" {
		return "", nil, errors.New("用户名和邮箱不能为空")
	}
	if len(password) < 8 {
		return "", nil, errors.New("密码长度不能少于8位")
	}

	switch role {
	case model.UserRoleOrganizer, model.UserRoleCustomer:
	case "":
		role = model.UserRoleCustomer
	default:
		// 管理员账户不开放注册
		return "", nil, errors.New("不支持的用户角色")
	}

	var count int64
	a.db.Model(&model.User{}).Where("username = ? OR email = ?", username, email).Count(&count)
	if count > 0 {
		return "", nil, errors.New("用户名或邮箱已被注册")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return "", nil, fmt.Errorf("创建用户失败: %w", err)
	}

	token, err := a.issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Login 登录
func (a *AuthLogic) Login(email, password string) (string, *model.User, error) {
	var user model.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.New("邮箱或密码错误")
		}
		return "", nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.New("邮箱或密码错误")
	}

	token, err := a.issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// VerifyToken 校验token并返回用户
func (a *AuthLogic) VerifyToken(tokenString string) (*model.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("无效的token")
	}

	var user model.User
	if err := a.db.First(&user, claims.UserId).Error; err != nil {
		return nil, errors.New("用户不存在")
	}
	return &user, nil
}

// IssueWalletNonce 为用户签发钱包绑定用的随机数
func (a *AuthLogic) IssueWalletNonce(userId int64) (string, error) {
	nonce := fmt.Sprintf("tiku-connect-%s", uuid.NewString())
	if err := a.db.Model(&model.User{}).Where("id = ?", userId).
		Update("wallet_nonce", nonce).Error; err != nil {
		return "", fmt.Errorf("保存nonce失败: %w", err)
	}
	return nonce, nil
}

// ConnectWallet 校验钱包签名并绑定地址
// 签名内容必须是最近一次签发的nonce，验证通过后立即轮换
func (a *AuthLogic) ConnectWallet(userId int64, address, signature string) (*model.User, error) {
	var user model.User
	if err := a.db.First(&user, userId).Error; err != nil {
		return nil, errors.New("用户不存在")
	}
	if user.WalletNonce == "" {
		return nil, errors.New("请先获取签名随机数")
	}

	ok, err := ethereum.VerifyPersonalSignature(address, user.WalletNonce, signature)
	if err != nil {
		return nil, fmt.Errorf("签名验证失败: %w", err)
	}
	if !ok {
		return nil, errors.New("签名与钱包地址不匹配")
	}

	updates := map[string]interface{}{
		"wallet_address": address,
		"wallet_nonce":   "", // 一次性nonce，用后作废
	}
	if err := a.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("绑定钱包失败: %w", err)
	}

	user.WalletAddress = address
	user.WalletNonce = ""
	return &user, nil
}

// DisconnectWallet 解绑钱包
func (a *AuthLogic) DisconnectWallet(userId int64) error {
	return a.db.Model(&model.User{}).Where("id = ?", userId).
		Update("wallet_address", "").Error
}

// issueToken 签发JWT
func (a *AuthLogic) issueToken(user *model.User) (string, error) {
	expiry := time.Duration(a.cfg.TokenExpiry) * time.Hour
	if a.cfg.TokenExpiry <= 0 {
		expiry = 24 * time.Hour
	}

	claims := Claims{
		UserId: user.Id,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("签发token失败: %w", err)
	}
	return signed, nil
}
