package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/services"

	"github.com/rs/zerolog/log"
)

const tokenKey = "shiprocket:token"

// TokenCache conserve le jeton Shiprocket entre deux redémarrages.
type TokenCache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Number accepte indifféremment un nombre ou une chaîne dans les réponses.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		raw = ""
	}
	*n = Number(raw)
	return nil
}

func (n Number) Int64() int64 {
	v, _ := strconv.ParseInt(string(n), 10, 64)
	return v
}

func (n Number) Float64() float64 {
	v, _ := strconv.ParseFloat(string(n), 64)
	return v
}

type PickupLocation struct {
	Name    string `json:"pickup_location"`
	PinCode Number `json:"pin_code"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type CreatedOrder struct {
	OrderID    Number `json:"order_id"`
	ShipmentID Number `json:"shipment_id"`
	Status     string `json:"status"`
	StatusCode Number `json:"status_code"`
	Message    string `json:"message"`
}

// Accepted: Shiprocket renvoie status_code 1 ou un order_id non nul en cas de succès.
func (c CreatedOrder) Accepted() bool {
	return c.StatusCode.Int64() == 1 || c.OrderID.Int64() != 0
}

type Courier struct {
	ID            Number `json:"courier_company_id"`
	Name          string `json:"courier_name"`
	Rate          Number `json:"rate"`
	EstimatedDays Number `json:"estimated_delivery_days"`
	COD           Number `json:"cod"`
}

type TrackingActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

type Tracking struct {
	AWBCode          string             `json:"awb_code"`
	CurrentStatus    string             `json:"current_status"`
	ShipmentStatus   Number             `json:"shipment_status"`
	EstimatedArrival string             `json:"etd"`
	TrackURL         string             `json:"track_url"`
	Activities       []TrackingActivity `json:"shipment_track_activities"`
}

// Delivered indique que le transporteur a livré le colis.
func (t Tracking) Delivered() bool {
	return strings.EqualFold(strings.TrimSpace(t.CurrentStatus), "delivered") || t.ShipmentStatus.Int64() == 7
}

// Client parle à l'API Shiprocket.
type Client struct {
	cfg    config.ShippingConfig
	http   *services.HTTPClient
	tokens TokenCache

	mu      sync.Mutex
	token   string
	pickups []PickupLocation
}

// NewClient: tokens peut être nil, le jeton reste alors en mémoire.
func NewClient(cfg config.ShippingConfig, tokens TokenCache, timeout time.Duration) *Client {
	return &Client{
		cfg:    cfg,
		http:   services.NewHTTPClient("shiprocket", timeout),
		tokens: tokens,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) login(ctx context.Context) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	err := c.http.DoJSON(ctx, services.HTTPRequest{
		Method: http.MethodPost,
		URL:    c.url("/auth/login"),
		Body:   map[string]string{"email": c.cfg.Email, "password": c.cfg.Password},
	}, &res)
	if err != nil {
		return "", errs.Upstream("shiprocket", fmt.Errorf("authentification: %w", err))
	}
	if res.Token == "" {
		return "", errs.Upstream("shiprocket", errors.New("jeton absent de la réponse"))
	}
	log.Info().Str("component", "shiprocket").Msg("✅ Authentification Shiprocket réussie")
	return res.Token, nil
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.tokens != nil {
		if t, err := c.tokens.GetString(ctx, tokenKey); err == nil && t != "" {
			c.token = t
			return t, nil
		} else if err != nil && !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("⚠️ Lecture du jeton Shiprocket en cache impossible")
		}
	}
	t, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token = t
	if c.tokens != nil {
		if err := c.tokens.SetString(ctx, tokenKey, t, c.cfg.TokenTTL); err != nil {
			log.Warn().Err(err).Msg("⚠️ Jeton Shiprocket non mis en cache")
		}
	}
	return t, nil
}

func (c *Client) forgetToken(ctx context.Context) {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	if c.tokens != nil {
		_ = c.tokens.Delete(ctx, tokenKey)
	}
}

// call ajoute le jeton et se réauthentifie une fois sur 401.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.authToken(ctx)
		if err != nil {
			return err
		}
		err = c.http.DoJSON(ctx, services.HTTPRequest{
			Method:  method,
			URL:     c.url(path),
			Body:    body,
			Headers: map[string]string{"Authorization": "Bearer " + token},
		}, out)
		var status *services.StatusError
		if errors.As(err, &status) && status.Code == http.StatusUnauthorized && attempt == 0 {
			log.Warn().Msg("⚠️ Jeton Shiprocket expiré, nouvelle authentification")
			c.forgetToken(ctx)
			continue
		}
		if err != nil {
			return errs.Upstream("shiprocket", err)
		}
		return nil
	}
	return errs.Upstream("shiprocket", errors.New("authentification refusée"))
}

// PickupLocations liste les adresses d'enlèvement (mises en cache).
func (c *Client) PickupLocations(ctx context.Context) ([]PickupLocation, error) {
	c.mu.Lock()
	cached := c.pickups
	c.mu.Unlock()
	if len(cached) > 0 {
		return cached, nil
	}

	var res struct {
		Data struct {
			ShippingAddress []PickupLocation `json:"shipping_address"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/settings/company/pickup", nil, &res); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.pickups = res.Data.ShippingAddress
	c.mu.Unlock()
	return res.Data.ShippingAddress, nil
}

// Pickup retourne l'adresse configurée si elle existe, sinon la première.
func (c *Client) Pickup(ctx context.Context) (PickupLocation, error) {
	locations, err := c.PickupLocations(ctx)
	if err != nil {
		return PickupLocation{}, err
	}
	if len(locations) == 0 {
		return PickupLocation{}, errs.Upstream("shiprocket", errors.New("aucune adresse d'enlèvement"))
	}
	for _, l := range locations {
		if c.cfg.PickupLocation != "" && l.Name == c.cfg.PickupLocation {
			return l, nil
		}
	}
	if c.cfg.PickupLocation != "" {
		log.Warn().Str("configured", c.cfg.PickupLocation).Str("using", locations[0].Name).
			Msg("⚠️ Adresse d'enlèvement configurée inconnue, adresse principale utilisée")
	}
	return locations[0], nil
}

func (c *Client) CreateOrder(ctx context.Context, order AdhocOrder) (*CreatedOrder, error) {
	var res CreatedOrder
	if err := c.call(ctx, http.MethodPost, "/orders/create/adhoc", order, &res); err != nil {
		return nil, err
	}
	if !res.Accepted() {
		return nil, errs.Upstream("shiprocket", fmt.Errorf("commande refusée: %s", res.Message))
	}
	return &res, nil
}

// Couriers interroge la desserte entre deux codes postaux.
func (c *Client) Couriers(ctx context.Context, pickupPin, deliveryPin string, weight float64, cod bool) ([]Courier, error) {
	q := url.Values{}
	q.Set("pickup_postcode", pickupPin)
	q.Set("delivery_postcode", deliveryPin)
	q.Set("weight", strconv.FormatFloat(weight, 'f', -1, 64))
	q.Set("cod", "0")
	if cod {
		q.Set("cod", "1")
	}
	var res struct {
		Data struct {
			Available []Courier `json:"available_courier_companies"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/courier/serviceability/?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return res.Data.Available, nil
}

// AssignAWB retourne le numéro de suivi attribué par le transporteur.
func (c *Client) AssignAWB(ctx context.Context, shipmentID int64, courierID string) (string, error) {
	var res struct {
		AWBCode  string `json:"awb_code"`
		Response struct {
			Data struct {
				AWBCode string `json:"awb_code"`
			} `json:"data"`
		} `json:"response"`
	}
	body := map[string]string{"shipment_id": strconv.FormatInt(shipmentID, 10), "courier_id": courierID}
	if err := c.call(ctx, http.MethodPost, "/courier/assign/awb", body, &res); err != nil {
		return "", err
	}
	awb := res.AWBCode
	if awb == "" {
		awb = res.Response.Data.AWBCode
	}
	if awb == "" {
		return "", errs.Upstream("shiprocket", errors.New("AWB absent de la réponse"))
	}
	return awb, nil
}

func (c *Client) GeneratePickup(ctx context.Context, shipmentID int64) error {
	body := map[string][]int64{"shipment_id": {shipmentID}}
	return c.call(ctx, http.MethodPost, "/courier/generate/pickup", body, nil)
}

type trackingData struct {
	ShipmentStatus Number             `json:"shipment_status"`
	Track          []Tracking         `json:"shipment_track"`
	Activities     []TrackingActivity `json:"shipment_track_activities"`
	TrackURL       string             `json:"track_url"`
	ETD            string             `json:"etd"`
}

type trackingEnvelope struct {
	TrackingData *trackingData `json:"tracking_data"`
}

// Track lit le suivi d'une expédition. La réponse est soit indexée par
// l'identifiant d'expédition, soit directement {"tracking_data": ...}.
func (c *Client) Track(ctx context.Context, shipmentID int64) (*Tracking, error) {
	id := strconv.FormatInt(shipmentID, 10)
	var res map[string]json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/courier/track/shipment/"+id, nil, &res); err != nil {
		return nil, err
	}

	var env trackingEnvelope
	if raw, ok := res[id]; ok {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, errs.Upstream("shiprocket", fmt.Errorf("suivi illisible: %w", err))
		}
	} else if raw, ok := res["tracking_data"]; ok {
		env.TrackingData = &trackingData{}
		if err := json.Unmarshal(raw, env.TrackingData); err != nil {
			return nil, errs.Upstream("shiprocket", fmt.Errorf("suivi illisible: %w", err))
		}
	}
	if env.TrackingData == nil {
		return &Tracking{}, nil
	}

	data := env.TrackingData
	t := Tracking{
		ShipmentStatus:   data.ShipmentStatus,
		Activities:       data.Activities,
		TrackURL:         data.TrackURL,
		EstimatedArrival: data.ETD,
	}
	if len(data.Track) > 0 {
		t.AWBCode = data.Track[0].AWBCode
		t.CurrentStatus = data.Track[0].CurrentStatus
	}
	return &t, nil
}
