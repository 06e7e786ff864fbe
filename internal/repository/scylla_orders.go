package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

const orderColumns = `order_id, user_email, phone, delivery_address, items, subtotal, delivery_charge,
	cod_fee, tax, total_amount, payment_method, payment_status, order_status, gateway_order_id,
	gateway_payment_id, gateway_signature, provider_order_id, shipment_id, awb_code, courier_name,
	tracking_url, created_at, updated_at`

type ScyllaOrderRepository struct {
	session *gocql.Session
}

func NewScyllaOrderRepository(session *gocql.Session) *ScyllaOrderRepository {
	return &ScyllaOrderRepository{session: session}
}

func scanOrders(iter *gocql.Iter) ([]models.Order, error) {
	var out []models.Order
	for {
		var (
			o                       models.Order
			address, items          string
			method, payment, status string
		)
		if !iter.Scan(&o.ID, &o.UserEmail, &o.Phone, &address, &items, &o.Subtotal, &o.DeliveryCharge,
			&o.CODFee, &o.Tax, &o.TotalAmount, &method, &payment, &status, &o.GatewayOrderID,
			&o.GatewayPaymentID, &o.GatewaySignature, &o.Shipment.ProviderOrderID, &o.Shipment.ShipmentID,
			&o.Shipment.AWBCode, &o.Shipment.CourierName, &o.Shipment.TrackingURL, &o.CreatedAt, &o.UpdatedAt) {
			break
		}
		if err := json.Unmarshal([]byte(address), &o.DeliveryAddress); err != nil {
			iter.Close()
			return nil, fmt.Errorf("adresse de la commande %s illisible: %w", o.ID, err)
		}
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			iter.Close()
			return nil, fmt.Errorf("articles de la commande %s illisibles: %w", o.ID, err)
		}
		o.PaymentMethod = models.PaymentMethod(method)
		o.PaymentStatus = models.PaymentStatus(payment)
		o.OrderStatus = models.OrderStatus(status)
		out = append(out, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortOrders(out)
	return out, nil
}

func (r *ScyllaOrderRepository) one(ctx context.Context, where string, arg interface{}, label string) (*models.Order, error) {
	orders, err := scanOrders(r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE `+where+` = ?`, arg).
		WithContext(ctx).Iter())
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, notFound(label, arg)
	}
	return &orders[0], nil
}

func (r *ScyllaOrderRepository) Create(ctx context.Context, o *models.Order) error {
	address, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, strings.ToLower(o.UserEmail), o.Phone, string(address), string(items), o.Subtotal, o.DeliveryCharge,
		o.CODFee, o.Tax, o.TotalAmount, string(o.PaymentMethod), string(o.PaymentStatus), string(o.OrderStatus),
		o.GatewayOrderID, o.GatewayPaymentID, o.GatewaySignature, o.Shipment.ProviderOrderID, o.Shipment.ShipmentID,
		o.Shipment.AWBCode, o.Shipment.CourierName, o.Shipment.TrackingURL, o.CreatedAt, o.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaOrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	return r.one(ctx, "order_id", id, "commande")
}

func (r *ScyllaOrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	return r.one(ctx, "gateway_order_id", gatewayOrderID, "commande passerelle")
}

func (r *ScyllaOrderRepository) Delete(ctx context.Context, id string) error {
	return r.session.Query(`DELETE FROM orders WHERE order_id = ?`, id).WithContext(ctx).Exec()
}

func (r *ScyllaOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return scanOrders(r.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter())
}

func (r *ScyllaOrderRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return scanOrders(r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE user_email = ?`,
		strings.ToLower(email)).WithContext(ctx).Iter())
}

func (r *ScyllaOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return scanOrders(r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_status = ?`,
		string(status)).WithContext(ctx).Iter())
}

func (r *ScyllaOrderRepository) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	var current string
	applied, err := r.session.Query(`UPDATE orders SET order_status = ?, updated_at = ?
		WHERE order_id = ? IF order_status = ?`,
		string(to), time.Now(), id, string(from),
	).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, err
	}
	if !applied && current == "" {
		// Ligne absente: LWT renvoie applied=false sans valeur courante.
		if _, err := r.Get(ctx, id); err != nil {
			return false, err
		}
	}
	return applied, nil
}

func (r *ScyllaOrderRepository) UpdatePayment(ctx context.Context, id string, p models.PaymentUpdate) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.GatewayPaymentID == "" {
		p.GatewayPaymentID = existing.GatewayPaymentID
	}
	if p.GatewaySignature == "" {
		p.GatewaySignature = existing.GatewaySignature
	}
	return r.session.Query(`UPDATE orders SET payment_status = ?, gateway_payment_id = ?, gateway_signature = ?,
		updated_at = ? WHERE order_id = ?`,
		string(p.Status), p.GatewayPaymentID, p.GatewaySignature, time.Now(), id,
	).WithContext(ctx).Exec()
}

func (r *ScyllaOrderRepository) UpdateShipment(ctx context.Context, id string, s models.ShipmentInfo) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.session.Query(`UPDATE orders SET provider_order_id = ?, shipment_id = ?, awb_code = ?,
		courier_name = ?, tracking_url = ?, updated_at = ? WHERE order_id = ?`,
		s.ProviderOrderID, s.ShipmentID, s.AWBCode, s.CourierName, s.TrackingURL, time.Now(), id,
	).WithContext(ctx).Exec()
}

var _ OrderRepository = (*ScyllaOrderRepository)(nil)
