package logic

import (
	"testing"
	"time"

	"github.com/MaulRai/tiku/internal/database"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	testCreator = "0x1111111111111111111111111111111111111111"
	testBuyer   = "0x2222222222222222222222222222222222222222"
	testTax     = "0x3333333333333333333333333333333333333333"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// seedEvent 插入一个指定状态的活动
func seedEvent(t *testing.T, db *gorm.DB, status model.EventStatus) *model.Event {
	t.Helper()

	event := &model.Event{
		Name:           "Summer Festival",
		Location:       "Jakarta",
		Date:           time.Now().Add(30 * 24 * time.Hour),
		Status:         status,
		CreatorAddress: testCreator,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

// seedTicketType 插入一个售票窗口已打开的票种
func seedTicketType(t *testing.T, db *gorm.DB, eventId, price, stock int64) *model.TicketType {
	t.Helper()

	ticketType := &model.TicketType{
		EventId:       eventId,
		Name:          "Regular",
		Price:         price,
		Stock:         stock,
		SaleStartDate: time.Now().Add(-time.Hour),
		SaleEndDate:   time.Now().Add(24 * time.Hour),
		Active:        true,
	}
	require.NoError(t, db.Create(ticketType).Error)
	return ticketType
}

// seedApprovedProposal 插入一个已批准的提案及受益人
func seedApprovedProposal(t *testing.T, db *gorm.DB, eventId int64) *model.Proposal {
	t.Helper()

	proposal := &model.Proposal{
		EventId:          eventId,
		CreatorAddress:   testCreator,
		TaxWalletAddress: testTax,
		Status:           model.ProposalStatusApproved,
		SubmittedAt:      time.Now(),
	}
	require.NoError(t, db.Create(proposal).Error)

	beneficiaries := []model.RevenueBeneficiary{
		{ProposalId: proposal.Id, Address: testCreator, BasisPoints: 9000, SortOrder: 0},
		{ProposalId: proposal.Id, Address: testTax, BasisPoints: 1000, SortOrder: 1},
	}
	require.NoError(t, db.Create(&beneficiaries).Error)

	proposal.Beneficiaries = beneficiaries
	return proposal
}
