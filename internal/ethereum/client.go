package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client 票务合约客户端
type Client struct {
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	chainId       *big.Int
	contractAddr  common.Address
	contractABI   abi.ABI
	bound         *bind.BoundContract
	confirmations int
}

// 票务合约ABI定义（简化版）
const ticketingABI = `[
	{
		"inputs": [
			{"name": "eventId", "type": "uint256"},
			{"name": "typeId", "type": "uint256"},
			{"name": "quantity", "type": "uint256"},
			{"name": "beneficiaries", "type": "address[]"},
			{"name": "basisPoints", "type": "uint256[]"}
		],
		"name": "buyTickets",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "tokenId", "type": "uint256"},
			{"name": "resalePrice", "type": "uint256"},
			{"name": "resaleDeadline", "type": "uint256"}
		],
		"name": "listTicketForResale",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "buyResaleTicket",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "getTicketDetails",
		"outputs": [
			{"name": "eventId", "type": "uint256"},
			{"name": "typeId", "type": "uint256"},
			{"name": "owner", "type": "address"},
			{"name": "originalPrice", "type": "uint256"},
			{"name": "isUsed", "type": "bool"},
			{"name": "isForResale", "type": "bool"},
			{"name": "resalePrice", "type": "uint256"},
			{"name": "resaleDeadline", "type": "uint256"},
			{"name": "resaleCount", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "owner", "type": "address"}],
		"name": "getUserTickets",
		"outputs": [{"name": "", "type": "uint256[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "canResell",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "getMaxResalePrice",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "eventId", "type": "uint256"},
			{"indexed": true, "name": "typeId", "type": "uint256"},
			{"indexed": false, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "buyer", "type": "address"},
			{"indexed": false, "name": "price", "type": "uint256"}
		],
		"name": "TicketMinted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "resalePrice", "type": "uint256"},
			{"indexed": false, "name": "resaleDeadline", "type": "uint256"}
		],
		"name": "TicketListedForResale",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "from", "type": "address"},
			{"indexed": false, "name": "to", "type": "address"},
			{"indexed": false, "name": "price", "type": "uint256"}
		],
		"name": "TicketResold",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "scanner", "type": "address"}
		],
		"name": "TicketUsed",
		"type": "event"
	}
]`

// TicketDetails 链上票详情
type TicketDetails struct {
	EventId        *big.Int
	TypeId         *big.Int
	Owner          common.Address
	OriginalPrice  *big.Int
	IsUsed         bool
	IsForResale    bool
	ResalePrice    *big.Int
	ResaleDeadline *big.Int
	ResaleCount    *big.Int
}

// TxResult 链上交易结果
type TxResult struct {
	TxHash   string
	BlockNum uint64
}

// PurchaseResult 购票交易结果
type PurchaseResult struct {
	TxHash   string
	BlockNum uint64
	TokenIds []int64
}

// Init 初始化票务合约客户端
func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(ticketingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	// 票务合约地址取自合约配置
	ticketingCfg, ok := cfg.Contracts["ticketing"]
	if !ok {
		return nil, fmt.Errorf("ticketing contract not configured")
	}
	contractAddr := common.HexToAddress(ticketingCfg.Address)

	bound := bind.NewBoundContract(contractAddr, parsedABI, client, client, client)

	return &Client{
		client:        client,
		privateKey:    privateKey,
		chainId:       big.NewInt(cfg.ChainId),
		contractAddr:  contractAddr,
		contractABI:   parsedABI,
		bound:         bound,
		confirmations: cfg.Confirmations,
	}, nil
}

// BuyTickets 购票：向合约支付总额并铸造门票
// beneficiaries 与 basisPoints 顺序对应，value 为wei总额（含手续费）
func (c *Client) BuyTickets(ctx context.Context, eventId, typeId int64, quantity int, beneficiaries []common.Address, basisPoints []*big.Int, value *big.Int) (*PurchaseResult, error) {
	if len(beneficiaries) != len(basisPoints) {
		return nil, fmt.Errorf("beneficiaries and basis points length mismatch")
	}

	auth, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	auth.Value = value

	tx, err := c.bound.Transact(auth, "buyTickets",
		big.NewInt(eventId), big.NewInt(typeId), big.NewInt(int64(quantity)),
		beneficiaries, basisPoints)
	if err != nil {
		return nil, fmt.Errorf("buyTickets transaction failed: %w", err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	// 从回执日志中提取铸造的票ID
	tokenIds, err := c.mintedTokenIds(receipt)
	if err != nil {
		return nil, err
	}

	return &PurchaseResult{
		TxHash:   receipt.TxHash.Hex(),
		BlockNum: receipt.BlockNumber.Uint64(),
		TokenIds: tokenIds,
	}, nil
}

// ListTicketForResale 挂单转售
func (c *Client) ListTicketForResale(ctx context.Context, tokenId int64, resalePrice *big.Int, resaleDeadline int64) (*TxResult, error) {
	auth, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.bound.Transact(auth, "listTicketForResale",
		big.NewInt(tokenId), resalePrice, big.NewInt(resaleDeadline))
	if err != nil {
		return nil, fmt.Errorf("listTicketForResale transaction failed: %w", err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &TxResult{TxHash: receipt.TxHash.Hex(), BlockNum: receipt.BlockNumber.Uint64()}, nil
}

// BuyResaleTicket 购买转售票
func (c *Client) BuyResaleTicket(ctx context.Context, tokenId int64, price *big.Int) (*TxResult, error) {
	auth, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	auth.Value = price

	tx, err := c.bound.Transact(auth, "buyResaleTicket", big.NewInt(tokenId))
	if err != nil {
		return nil, fmt.Errorf("buyResaleTicket transaction failed: %w", err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &TxResult{TxHash: receipt.TxHash.Hex(), BlockNum: receipt.BlockNumber.Uint64()}, nil
}

// GetTicketDetails 查询链上票详情
func (c *Client) GetTicketDetails(ctx context.Context, tokenId int64) (*TicketDetails, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.bound.Call(opts, &out, "getTicketDetails", big.NewInt(tokenId)); err != nil {
		return nil, fmt.Errorf("getTicketDetails call failed: %w", err)
	}

	if len(out) != 9 {
		return nil, fmt.Errorf("unexpected getTicketDetails output length: %d", len(out))
	}

	return &TicketDetails{
		EventId:        out[0].(*big.Int),
		TypeId:         out[1].(*big.Int),
		Owner:          out[2].(common.Address),
		OriginalPrice:  out[3].(*big.Int),
		IsUsed:         out[4].(bool),
		IsForResale:    out[5].(bool),
		ResalePrice:    out[6].(*big.Int),
		ResaleDeadline: out[7].(*big.Int),
		ResaleCount:    out[8].(*big.Int),
	}, nil
}

// GetUserTickets 查询地址持有的全部票ID
func (c *Client) GetUserTickets(ctx context.Context, owner common.Address) ([]int64, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.bound.Call(opts, &out, "getUserTickets", owner); err != nil {
		return nil, fmt.Errorf("getUserTickets call failed: %w", err)
	}

	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getUserTickets output type")
	}

	tokenIds := make([]int64, 0, len(raw))
	for _, id := range raw {
		tokenIds = append(tokenIds, id.Int64())
	}
	return tokenIds, nil
}

// CanResell 查询票是否允许转售
func (c *Client) CanResell(ctx context.Context, tokenId int64) (bool, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.bound.Call(opts, &out, "canResell", big.NewInt(tokenId)); err != nil {
		return false, fmt.Errorf("canResell call failed: %w", err)
	}
	return out[0].(bool), nil
}

// GetMaxResalePrice 查询票的最高转售价（wei）
func (c *Client) GetMaxResalePrice(ctx context.Context, tokenId int64) (*big.Int, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.bound.Call(opts, &out, "getMaxResalePrice", big.NewInt(tokenId)); err != nil {
		return nil, fmt.Errorf("getMaxResalePrice call failed: %w", err)
	}
	return out[0].(*big.Int), nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// GetTransactionReceipt 获取交易回执
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, txHash)
}

// IsTransactionConfirmed 检查交易是否已确认
func (c *Client) IsTransactionConfirmed(ctx context.Context, txHash common.Hash) (bool, error) {
	receipt, err := c.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return false, err
	}

	if receipt == nil {
		return false, nil
	}

	latestBlock, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}

	return latestBlock >= receipt.BlockNumber.Uint64()+uint64(c.confirmations), nil
}

// GetAccountAddress 获取服务端账户地址
func (c *Client) GetAccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// GetEthClient 获取底层ethclient
func (c *Client) GetEthClient() *ethclient.Client {
	return c.client
}

// transactOpts 构建交易授权
func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}

// waitMined 等待交易上链并校验执行状态
func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// mintedTokenIds 从回执日志中解析 TicketMinted 事件的票ID
func (c *Client) mintedTokenIds(receipt *types.Receipt) ([]int64, error) {
	mintedEvent := c.contractABI.Events["TicketMinted"]

	var tokenIds []int64
	for _, log := range receipt.Logs {
		if log.Address != c.contractAddr || len(log.Topics) == 0 {
			continue
		}
		if log.Topics[0] != mintedEvent.ID {
			continue
		}

		values, err := mintedEvent.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack TicketMinted event: %w", err)
		}
		tokenIds = append(tokenIds, values[0].(*big.Int).Int64())
	}

	if len(tokenIds) == 0 {
		return nil, fmt.Errorf("no TicketMinted events in receipt %s", receipt.TxHash.Hex())
	}

	return tokenIds, nil
}
