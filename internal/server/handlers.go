package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/money"
	"github.com/grouppay/grouppay/internal/service"
)

type parseReceiptRequest struct {
	Text string `json:"text"`
}

// splitRequest is the payload shared by split previews and bill writes.
type splitRequest struct {
	Items        []models.LineItem            `json:"items"`
	Assignments  map[string]models.Assignment `json:"assignments"`
	Participants []models.Participant         `json:"participants"`
	PayerID      string                       `json:"payerId"`
	Params       models.SplitParameters       `json:"params"`
	Mode         models.SplitMode             `json:"mode"`

	// TipPercent derives the tip from the item subtotal when no explicit
	// tip amount is given.
	TipPercent float64 `json:"tipPercent,omitempty"`
}

// resolveTip fills Params.TipAmount from TipPercent when the client sent a
// percentage instead of an amount.
func (r *splitRequest) resolveTip() {
	if r.TipPercent <= 0 || r.Params.TipAmount != 0 {
		return
	}
	var subtotal money.Amount
	for _, item := range r.Items {
		subtotal += item.TotalPrice()
	}
	r.Params.TipAmount = subtotal.Percent(r.TipPercent)
}

type billRequest struct {
	splitRequest
	Title   string `json:"title"`
	GroupID string `json:"groupId"`
}

func (r *billRequest) toBill() *models.Bill {
	r.resolveTip()
	return &models.Bill{
		Title:        r.Title,
		Items:        r.Items,
		Assignments:  r.Assignments,
		Participants: r.Participants,
		PayerID:      r.PayerID,
		Params:       r.Params,
		Mode:         r.Mode,
		GroupID:      r.GroupID,
	}
}

type addMembersRequest struct {
	Members []string `json:"members"`
}

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) parseReceipt(c *gin.Context) {
	var req parseReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, s.bills.ParseReceipt(c.Request.Context(), req.Text))
}

func (s *Server) previewSplit(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.resolveTip()

	result, err := s.bills.PreviewSplit(c.Request.Context(),
		req.Items, req.Assignments, req.Participants, req.PayerID, req.Params, req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) createBill(c *gin.Context) {
	var req billRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	bill := req.toBill()
	split, err := s.bills.CreateBill(c.Request.Context(), bill)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bill": bill, "split": split})
}

func (s *Server) getBill(c *gin.Context) {
	bill, split, err := s.bills.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill, "split": split})
}

func (s *Server) updateBill(c *gin.Context) {
	var req billRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	bill := req.toBill()
	bill.ID = c.Param("id")
	split, err := s.bills.UpdateBill(c.Request.Context(), bill)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill, "split": split})
}

func (s *Server) deleteBill(c *gin.Context) {
	if err := s.bills.DeleteBill(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createGroup(c *gin.Context) {
	var group models.Group
	if err := c.ShouldBindJSON(&group); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.groups.CreateGroup(c.Request.Context(), &group); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (s *Server) listGroups(c *gin.Context) {
	groups, err := s.groups.ListGroups(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) getGroup(c *gin.Context) {
	group, err := s.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) updateGroup(c *gin.Context) {
	var group models.Group
	if err := c.ShouldBindJSON(&group); err != nil {
		badRequest(c, err)
		return
	}

	group.ID = c.Param("id")
	updated, err := s.groups.UpdateGroup(c.Request.Context(), &group)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteGroup(c *gin.Context) {
	if err := s.groups.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addGroupMembers(c *gin.Context) {
	var req addMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := s.groups.AddMembers(c.Request.Context(), c.Param("id"), req.Members)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) listGroupBills(c *gin.Context) {
	bills, err := s.bills.ListBillsByGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (s *Server) groupBalances(c *gin.Context) {
	balances, debts, err := s.groups.Balances(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances, "debts": debts})
}

func (s *Server) recordSettlement(c *gin.Context) {
	var settlement models.Settlement
	if err := c.ShouldBindJSON(&settlement); err != nil {
		badRequest(c, err)
		return
	}

	settlement.GroupID = c.Param("id")
	if err := s.groups.RecordSettlement(c.Request.Context(), &settlement); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

func (s *Server) listSettlements(c *gin.Context) {
	settlements, err := s.groups.ListSettlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

func (s *Server) deleteSettlement(c *gin.Context) {
	if err := s.groups.DeleteSettlement(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
