package webapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/service/transfer"
	"github.com/walletguard/walletd/webapi/common"
	"github.com/walletguard/walletd/webapi/middleware"
)

// TransferRequest is the transfer intake payload. The sender is always the
// authenticated account and the commission fee is computed server-side from
// the configured percentage.
type TransferRequest struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,min=1"`
	Amount     string `json:"amount" validate:"required"`
}

// CreateTransfer validates the request, computes the commission fee and
// enqueues an asynchronous transfer job. The response only acknowledges
// intake; the outcome arrives as a notification.
func (s *Server) CreateTransfer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		senderID, err := middleware.AccountID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}

		amount, err := decimal.NewFromString(input.Amount)
		if err != nil || amount.LessThan(decimal.NewFromInt(1)) {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Validation failed", "Amount must be greater than 0")
		}
		if input.ReceiverID == senderID {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Validation failed", domain.ErrSameAccount.Error())
		}
		if _, err := s.uow.Accounts().Get(c.Context(), input.ReceiverID); err != nil {
			return common.DomainErrorJSON(c, err)
		}

		fee := amount.Mul(decimal.NewFromFloat(s.cfg.Fee.CommissionPercentage)).Round(2)
		job := transfer.Job{
			SenderID:      senderID,
			ReceiverID:    input.ReceiverID,
			Amount:        amount.Round(2),
			CommissionFee: fee,
		}
		if err := s.processor.Enqueue(job); err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusServiceUnavailable, "Service unavailable", "transfer intake is shut down")
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Transaction processing", nil)
	}
}

// ListTransactions returns the requester's ledger entries, newest first,
// twenty per page.
func (s *Server) ListTransactions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := middleware.AccountID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		page, _ := strconv.Atoi(c.Query("page", "1"))

		txns, err := s.uow.Transactions().ListForAccount(c.Context(), accountID, page)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		views := make([]TransactionView, len(txns))
		for i, t := range txns {
			views[i] = transactionView(t, accountID)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", fiber.Map{
			"page":         page,
			"per_page":     len(views),
			"transactions": views,
		})
	}
}

// ValidateReceiver checks whether an account can receive funds before the
// client submits a transfer.
func (s *Server) ValidateReceiver() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Receiver not found", "invalid receiver id")
		}
		receiver, err := s.uow.Accounts().Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Receiver not found", "Receiver not found")
		}
		if receiver.Flagged() {
			return common.ProblemDetailsJSON(c, fiber.StatusUnprocessableEntity, "Receiver is flagged", domain.ReceiverFlaggedMessage)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Receiver found", accountView(receiver))
	}
}
