package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"

	usecase "github.com/peluqueria-anita/salon-api/internal/usecase/payment"
)

const currency = "CLP"

// preferenceCreator is the part of the MercadoPago preference client used
// here.
type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type MercadoPago struct {
	client preferenceCreator
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: preference.NewClient(cfg)}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutLink, error) {
	amount, _ := req.Amount.Float64()

	res, err := m.client.Create(ctx, preference.Request{
		ExternalReference: strconv.FormatUint(uint64(req.AppointmentID), 10),
		Items: []preference.ItemRequest{{
			ID:         strconv.FormatUint(uint64(req.AppointmentID), 10),
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  amount,
			CurrencyID: currency,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return &usecase.CheckoutLink{
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		PreferenceID:  res.ID,
		InitPoint:     res.InitPoint,
	}, nil
}

var _ usecase.CheckoutProvider = (*MercadoPago)(nil)
