package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract 合约工具类
type Contract struct {
	address  common.Address // 合约地址
	abi      abi.ABI        // 合约ABI
	name     string         // 合约名称
	blockNum int64          // 合约部署的区块号
}

// ParsedEvent 解析后的合约事件
type ParsedEvent struct {
	Name     string                 // 事件名称
	Contract string                 // 合约名称
	TxHash   string                 // 交易哈希
	BlockNum uint64                 // 区块号
	LogIndex uint                   // 日志序号
	Args     map[string]interface{} // 事件参数
}

// NewContract 创建合约实例
func NewContract(name string, contractCfg config.ContractConfig) (*Contract, error) {
	// 加载ABI
	abiData, err := os.ReadFile(contractCfg.ABIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ABI from %s: %w", contractCfg.ABIPath, err)
	}

	parsedABI, err := parseABI(abiData)
	if err != nil {
		return nil, err
	}

	return &Contract{
		address:  common.HexToAddress(contractCfg.Address),
		abi:      parsedABI,
		name:     name,
		blockNum: contractCfg.BlockNum,
	}, nil
}

// parseABI 解析ABI数据，兼容完整编译输出和裸ABI数组两种格式
func parseABI(abiData []byte) (abi.ABI, error) {
	var compiledOutput struct {
		ABI json.RawMessage `json:"abi"`
	}

	if err := json.Unmarshal(abiData, &compiledOutput); err == nil && compiledOutput.ABI != nil {
		parsed, err := abi.JSON(bytes.NewReader(compiledOutput.ABI))
		if err != nil {
			return abi.ABI{}, fmt.Errorf("failed to parse ABI from compiled output: %w", err)
		}
		return parsed, nil
	}

	parsed, err := abi.JSON(bytes.NewReader(abiData))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return parsed, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// GetDeployBlock 获取合约部署区块号
func (c *Contract) GetDeployBlock() int64 {
	return c.blockNum
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (*ParsedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}

	event, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("unknown event signature %s in contract %s", log.Topics[0].Hex(), c.name)
	}

	args := make(map[string]interface{})

	// 解析索引参数
	indexed := make(abi.Arguments, 0)
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse indexed args of %s: %w", event.Name, err)
	}

	// 解析非索引参数
	if len(log.Data) > 0 {
		if err := event.Inputs.NonIndexed().UnpackIntoMap(args, log.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack data of %s: %w", event.Name, err)
		}
	}

	return &ParsedEvent{
		Name:     event.Name,
		Contract: c.name,
		TxHash:   log.TxHash.Hex(),
		BlockNum: log.BlockNumber,
		LogIndex: log.Index,
		Args:     args,
	}, nil
}
