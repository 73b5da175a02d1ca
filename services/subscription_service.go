package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
)

type SubscriptionService struct {
	db            *gorm.DB
	stripe        *client.API
	webhookSecret string
	priceMonthly  string
	priceYearly   string
	successURL    string
	cancelURL     string
	logger        *zap.SugaredLogger
}

func NewSubscriptionService(db *gorm.DB, secretKey, webhookSecret, priceMonthly, priceYearly, successURL, cancelURL string, logger *zap.SugaredLogger) *SubscriptionService {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &SubscriptionService{
		db:            db,
		stripe:        api,
		webhookSecret: webhookSecret,
		priceMonthly:  priceMonthly,
		priceYearly:   priceYearly,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}
}

type PlanInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	PriceUSD float64  `json:"price_usd"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
}

// Plans is the static catalog shown before checkout.
func (s *SubscriptionService) Plans() []PlanInfo {
	features := []string{
		"Unlimited meal logging",
		"AI meal photo analysis",
		"Personalized weekly diet plans",
		"Symptom correlation reports",
		"AI nutrition coach",
	}
	return []PlanInfo{
		{ID: "premium_monthly", Name: "Premium Monthly", PriceUSD: 9.99, Interval: "month", Features: features},
		{ID: "premium_yearly", Name: "Premium Yearly", PriceUSD: 79.99, Interval: "year", Features: features},
	}
}

func (s *SubscriptionService) priceFor(planID string) (string, error) {
	switch planID {
	case "premium_monthly":
		return s.priceMonthly, nil
	case "premium_yearly":
		return s.priceYearly, nil
	}
	return "", fmt.Errorf("unknown plan: %s", planID)
}

// CreateCheckoutSession starts a Stripe subscription checkout. The user ID
// rides along as the client reference so the webhook can attribute it.
func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, email, planID string) (string, error) {
	priceID, err := s.priceFor(planID)
	if err != nil {
		return "", err
	}
	if priceID == "" {
		return "", fmt.Errorf("plan %s has no configured price", planID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		CustomerEmail:     stripe.String(email),
		ClientReferenceID: stripe.String(userID.String()),
	}
	params.AddMetadata("plan", planID)
	params.Context = ctx

	sess, err := s.stripe.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the Stripe billing portal for an existing
// customer.
func (s *SubscriptionService) CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", fmt.Errorf("user has no billing account")
	}
	if returnURL == "" {
		returnURL = s.successURL
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := s.stripe.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies the signature and applies the event to the user's
// role and subscription record.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.activateFromCheckout(ctx, &sess)
	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return s.renewFromInvoice(ctx, &inv)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.deactivate(ctx, sub.Customer)
	default:
		s.logger.Debugw("ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (s *SubscriptionService) activateFromCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, err := uuid.Parse(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("checkout session has bad client reference: %w", err)
	}

	updates := map[string]any{"role": models.RolePremium}
	if sess.Customer != nil {
		updates["stripe_customer_id"] = sess.Customer.ID
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	plan := sess.Metadata["plan"]
	if plan == "" {
		plan = "premium_monthly"
	}

	var existing models.Subscription
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	now := time.Now().UTC()
	if err == nil {
		return s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"plan":       plan,
			"start_date": now,
			"end_date":   nil,
			"active":     true,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	row := models.Subscription{UserID: userID, Plan: plan, StartDate: now, Active: true}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	s.logger.Infow("subscription activated", "user_id", userID, "plan", plan)
	return nil
}

func (s *SubscriptionService) renewFromInvoice(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Customer == nil {
		return nil
	}
	user, err := s.userByCustomer(ctx, inv.Customer.ID)
	if err != nil {
		// first invoice can arrive before checkout.session.completed
		s.logger.Warnw("invoice for unknown customer", "customer", inv.Customer.ID)
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"active": true, "end_date": nil}).Error
}

func (s *SubscriptionService) deactivate(ctx context.Context, customer *stripe.Customer) error {
	if customer == nil {
		return nil
	}
	user, err := s.userByCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"active": false, "end_date": &now}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("role", models.RoleFree).Error; err != nil {
		return err
	}
	s.logger.Infow("subscription deactivated", "user_id", user.ID)
	return nil
}

func (s *SubscriptionService) userByCustomer(ctx context.Context, customerID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type SubscriptionStatus struct {
	Role      models.UserRole `json:"role"`
	Plan      string          `json:"plan,omitempty"`
	Active    bool            `json:"active"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

func (s *SubscriptionService) Status(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	status := &SubscriptionStatus{Role: user.Role}

	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err == gorm.ErrRecordNotFound {
		return status, nil
	}
	if err != nil {
		return nil, err
	}
	status.Plan = sub.Plan
	status.Active = sub.Active
	status.StartDate = &sub.StartDate
	status.EndDate = sub.EndDate
	return status, nil
}

// Cancel cancels the Stripe subscription at period end. The role flips to
// free when the deletion webhook lands.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	if user.StripeCustomerID == "" {
		return fmt.Errorf("user has no billing account")
	}

	listParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(user.StripeCustomerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	listParams.Context = ctx
	iter := s.stripe.Subscriptions.List(listParams)
	for iter.Next() {
		sub := iter.Subscription()
		updateParams := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		updateParams.Context = ctx
		if _, err := s.stripe.Subscriptions.Update(sub.ID, updateParams); err != nil {
			return fmt.Errorf("cancel subscription: %w", err)
		}
	}
	return iter.Err()
}
