package config

import (
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 单链配置
type ChainConfig struct {
	ChainType     string                    `mapstructure:"chain_type"`    // 链类型 (ethereum, polygon, etc.)
	ChainId       int64                     `mapstructure:"chain_id"`      // 链ID
	RpcUrl        string                    `mapstructure:"rpc_url"`       // RPC节点URL
	PrivateKey    string                    `mapstructure:"private_key"`   // 私钥
	Confirmations int                       `mapstructure:"confirmations"` // 确认区块数
	Contracts     map[string]ContractConfig `mapstructure:"contracts"`     // 该链上的合约配置
}

// ContractConfig 单个合约配置
type ContractConfig struct {
	Address  string `mapstructure:"address"`   // 合约地址
	ABIPath  string `mapstructure:"abi_path"`  // ABI文件路径
	Enabled  bool   `mapstructure:"enabled"`   // 是否启用此合约
	BlockNum int64  `mapstructure:"block_num"` // 合约部署区块号
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`   // JWT签名密钥
	TokenExpiry int    `mapstructure:"token_expiry"` // token有效期（小时）
}

// CheckoutConfig 购票配置
type CheckoutConfig struct {
	PlatformFeePercentage   float64 `mapstructure:"platform_fee_percentage"`   // 平台手续费百分比
	MaxTicketsPerPurchase   int     `mapstructure:"max_tickets_per_purchase"`  // 单次购买票数上限
	PercentToleranceEpsilon float64 `mapstructure:"percent_tolerance_epsilon"` // 受益人比例合计的容差
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	Dir             string `mapstructure:"dir"`               // 存储目录
	BaseURL         string `mapstructure:"base_url"`          // 访问URL前缀
	MaxImageSize    int64  `mapstructure:"max_image_size"`    // 图片大小上限（字节）
	MaxDocumentSize int64  `mapstructure:"max_document_size"` // 文档大小上限（字节）
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/tiku")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "tiku")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_type", "ethereum")
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("auth.token_expiry", 24)
	viper.SetDefault("checkout.platform_fee_percentage", 2.5)
	viper.SetDefault("checkout.max_tickets_per_purchase", 5)
	viper.SetDefault("checkout.percent_tolerance_epsilon", 0.01)
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.base_url", "/uploads")
	viper.SetDefault("upload.max_image_size", 5*1024*1024)
	viper.SetDefault("upload.max_document_size", 10*1024*1024)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
