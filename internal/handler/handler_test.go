package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Jassur2025/metallerp-sub000/internal/apierror"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/middleware"
	"github.com/Jassur2025/metallerp-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeProcurement implements only what the routes below call; anything else
// panics on the nil embedded interface.
type fakeProcurement struct {
	service.ProcurementService
	repayErr  error
	lastIndex int
}

func (f *fakeProcurement) Repay(_ context.Context, id uuid.UUID, _ dto.RepayRequest) (*dto.RepayResponse, error) {
	if f.repayErr != nil {
		return nil, f.repayErr
	}
	return &dto.RepayResponse{}, nil
}

func (f *fakeProcurement) DeleteLine(_ context.Context, _ uuid.UUID, index int) (*dto.LineChangeResponse, error) {
	f.lastIndex = index
	return &dto.LineChangeResponse{}, nil
}

func (f *fakeProcurement) VoucherPDF(_ context.Context, _ uuid.UUID, w io.Writer) error {
	_, err := io.WriteString(w, "%PDF-1.3")
	return err
}

type fakeAuth struct{ service.AuthService }

func (fakeAuth) Login(context.Context, dto.LoginRequest) (*dto.LoginResponse, error) {
	return nil, service.ErrInvalidCredentials
}

func procurementRouter(svc service.ProcurementService) *gin.Engine {
	h := NewProcurementHandler(svc)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/purchases/:id/repayments", h.Repay)
	r.DELETE("/purchases/:id/items/:index", h.DeleteLine)
	r.GET("/purchases/:id/voucher.pdf", h.Voucher)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRepay_InsufficientFundsOffersDebt(t *testing.T) {
	svc := &fakeProcurement{repayErr: &ledger.InsufficientFundsError{
		Method: ledger.Cash, Currency: ledger.USD,
		Required: decimal.RequireFromString("500"), Available: decimal.RequireFromString("120.5"),
	}}
	w := send(procurementRouter(svc), http.MethodPost, "/purchases/"+uuid.NewString()+"/repayments",
		`{"method":"cash","amount":"500","currency":"USD"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	var body apierror.FundsError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "debt", body.Fallback)
	assert.Equal(t, "120.50", body.Available)
}

func TestRepay_BadRequests(t *testing.T) {
	r := procurementRouter(&fakeProcurement{})

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/purchases/nope/repayments", `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		send(r, http.MethodPost, "/purchases/"+uuid.NewString()+"/repayments", `{"method":"cheque","amount":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodPost, "/purchases/"+uuid.NewString()+"/repayments", `{not json`).Code)
}

func TestDeleteLine_IndexParam(t *testing.T) {
	svc := &fakeProcurement{}
	r := procurementRouter(svc)
	id := uuid.NewString()

	assert.Equal(t, http.StatusOK, send(r, http.MethodDelete, "/purchases/"+id+"/items/2", "").Code)
	assert.Equal(t, 2, svc.lastIndex)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodDelete, "/purchases/"+id+"/items/-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodDelete, "/purchases/"+id+"/items/x", "").Code)
}

func TestVoucher_ServesPDF(t *testing.T) {
	w := send(procurementRouter(&fakeProcurement{}), http.MethodGet, "/purchases/"+uuid.NewString()+"/voucher.pdf", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimePDF, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestLogin_ValidationAndRejection(t *testing.T) {
	h := NewAuthHandler(fakeAuth{})
	r := gin.New()
	r.POST("/login", h.Login)

	assert.Equal(t, http.StatusUnprocessableEntity, send(r, http.MethodPost, "/login", `{"username":"u","password":"12"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, "/login", `{"username":"u","password":"secret1"}`).Code)
}
