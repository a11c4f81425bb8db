package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Manager 单链合约管理器
type Manager struct {
	mu        sync.RWMutex
	contracts map[string]*Contract // 合约映射: "contractName" -> Contract
	client    *ethclient.Client    // 链客户端
	config    config.ChainConfig   // 链配置
}

// NewManager 创建单链合约管理器
func NewManager(client *ethclient.Client, cfg config.ChainConfig) (*Manager, error) {
	manager := &Manager{
		contracts: make(map[string]*Contract),
		client:    client,
		config:    cfg,
	}

	if err := manager.initContracts(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize contracts: %w", err)
	}

	return manager, nil
}

// initContracts 初始化所有启用的合约
func (m *Manager) initContracts(cfg config.ChainConfig) error {
	for contractName, contractCfg := range cfg.Contracts {
		if !contractCfg.Enabled {
			logger.Info("Skipping disabled contract: %s", contractName)
			continue
		}

		logger.Info("Initializing contract: %s (address: %s)", contractName, contractCfg.Address)

		contract, err := NewContract(contractName, contractCfg)
		if err != nil {
			return fmt.Errorf("failed to create contract %s: %w", contractName, err)
		}

		m.contracts[contractName] = contract
	}

	logger.Info("Successfully initialized %d contracts", len(m.contracts))
	return nil
}

// GetContract 根据名称获取合约
func (m *Manager) GetContract(name string) (*Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contract, ok := m.contracts[name]
	if !ok {
		return nil, fmt.Errorf("contract %s not found", name)
	}
	return contract, nil
}

// GetContracts 获取全部合约
func (m *Manager) GetContracts() map[string]*Contract {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contracts := make(map[string]*Contract, len(m.contracts))
	for name, contract := range m.contracts {
		contracts[name] = contract
	}
	return contracts
}

// GetClient 获取链客户端
func (m *Manager) GetClient() *ethclient.Client {
	return m.client
}

// LatestBlock 获取最新区块号
func (m *Manager) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := m.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// FilterLogs 获取合约在指定区块范围内的日志
func (m *Manager) FilterLogs(ctx context.Context, contract *Contract, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contract.GetAddress()},
	}

	return m.client.FilterLogs(ctx, query)
}
