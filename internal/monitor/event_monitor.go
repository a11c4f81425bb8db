package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MaulRai/tiku/internal/chain"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/MaulRai/tiku/internal/logic"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// EventMonitor 区块链事件监控器
// 周期性拉取各合约的日志，落库去重后交给处理器更新业务数据
type EventMonitor struct {
	chainManager    *chain.Manager
	chainEventLogic *logic.ChainEventLogic
	processor       *EventProcessor
	startBlock      uint64
	pollInterval    time.Duration
	batchSize       uint64
	backoffDuration time.Duration // 出错后的退避时间
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.Mutex // 保护 startBlock
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(chainManager *chain.Manager, db *gorm.DB) *EventMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventMonitor{
		chainManager:    chainManager,
		chainEventLogic: logic.NewChainEventLogic(db),
		processor:       NewEventProcessor(db),
		pollInterval:    time.Second * 30,
		batchSize:       500,
		backoffDuration: time.Second * 5,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	logger.Info("Starting blockchain event monitor")

	contracts := m.chainManager.GetContracts()
	if len(contracts) == 0 {
		return errors.New("no contracts available for monitoring")
	}
	logger.Info("Found %d contracts to monitor", len(contracts))

	currentBlock, err := m.chainManager.LatestBlock(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", currentBlock)

	m.mu.Lock()
	m.startBlock = m.resolveStartBlock(contracts)
	m.mu.Unlock()

	logger.Info("Starting monitor from block %d", m.startBlock)

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping blockchain event monitor")
	m.cancel()
}

// resolveStartBlock 确定起始区块号
// 优先接着上次已记录的事件继续，否则从合约部署区块开始
func (m *EventMonitor) resolveStartBlock(contracts map[string]*chain.Contract) uint64 {
	var lastRecorded model.ChainEvent
	if err := m.processor.db.Order("block_num desc").First(&lastRecorded).Error; err == nil {
		return lastRecorded.BlockNum + 1
	}

	var earliest uint64
	for _, contract := range contracts {
		deployBlock := uint64(contract.GetDeployBlock())
		if earliest == 0 || deployBlock < earliest {
			earliest = deployBlock
		}
	}
	return earliest
}

// loop 监控循环
func (m *EventMonitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.chainManager.LatestBlock(m.ctx)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				time.Sleep(m.backoffDuration)
				continue
			}

			m.mu.Lock()
			from := m.startBlock
			m.mu.Unlock()

			if from > currentBlock {
				continue
			}

			if err := m.processRange(from, currentBlock); err != nil {
				logger.Error("Error processing blocks %d-%d: %v", from, currentBlock, err)
				time.Sleep(m.backoffDuration)
				continue
			}

			m.mu.Lock()
			m.startBlock = currentBlock + 1
			m.mu.Unlock()
		}
	}
}

// processRange 分批处理区块范围
func (m *EventMonitor) processRange(fromBlock, toBlock uint64) error {
	for from := fromBlock; from <= toBlock; from += m.batchSize {
		to := from + m.batchSize - 1
		if to > toBlock {
			to = toBlock
		}

		logger.Debug("Processing batch blocks %d to %d", from, to)
		if err := m.processBatch(from, to); err != nil {
			return err
		}
	}
	return nil
}

// processBatch 并行处理一批区块内各合约的日志
func (m *EventMonitor) processBatch(fromBlock, toBlock uint64) error {
	contracts := m.chainManager.GetContracts()

	pool, err := ants.NewPool(len(contracts))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errCh := make(chan error, len(contracts))

	for _, contract := range contracts {
		contract := contract
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := m.processContractLogs(contract, fromBlock, toBlock); err != nil {
				errCh <- err
			}
		}); err != nil {
			wg.Done()
			errCh <- fmt.Errorf("failed to submit task for contract %s: %w", contract.GetName(), err)
		}
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// processContractLogs 拉取并处理单个合约的日志
func (m *EventMonitor) processContractLogs(contract *chain.Contract, fromBlock, toBlock uint64) error {
	logs, err := m.chainManager.FilterLogs(m.ctx, contract, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("failed to filter logs for contract %s: %w", contract.GetName(), err)
	}

	for _, log := range logs {
		parsed, err := contract.ParseEvent(log)
		if err != nil {
			logger.Warn("Skipping unparseable log in tx %s: %v", log.TxHash.Hex(), err)
			continue
		}

		if err := m.recordAndProcess(parsed); err != nil {
			return err
		}
	}
	return nil
}

// recordAndProcess 落库事件记录并触发业务处理
func (m *EventMonitor) recordAndProcess(parsed *chain.ParsedEvent) error {
	data, err := json.Marshal(encodableArgs(parsed.Args))
	if err != nil {
		return fmt.Errorf("failed to marshal event args: %w", err)
	}

	record := model.ChainEvent{
		EventName: parsed.Name,
		Contract:  parsed.Contract,
		TxHash:    parsed.TxHash,
		BlockNum:  parsed.BlockNum,
		LogIndex:  parsed.LogIndex,
		Data:      string(data),
	}

	if err := m.chainEventLogic.CreateChainEvent(&record); err != nil {
		if errors.Is(err, logic.ErrChainEventExists) {
			return nil // 已处理过的事件直接跳过
		}
		return err
	}

	if err := m.processor.Process(&record, parsed); err != nil {
		logger.Error("Failed to process event %s in tx %s: %v", parsed.Name, parsed.TxHash, err)
		return nil // 处理失败的事件保留 processed=false，等待人工排查
	}

	return m.chainEventLogic.MarkProcessed(record.Id)
}
