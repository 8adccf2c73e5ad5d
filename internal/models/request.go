// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultBusinessType is used when a template submission omits the business type.
const DefaultBusinessType = "Barbershop"

// Template selects which site skeleton a template request is rendered with.
type Template string

const (
	TemplateClassic Template = "classic"
	TemplateModern  Template = "modern"
)

// RequestStatus is the administrator-managed progress of a personalized request.
// The store accepts any string; these are the values the dashboard offers.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
)

// TemplateRequest is a visitor's request for an AI-generated template site.
// GeneratedContent and HTMLContent are nil until generation has been attached;
// the store writes both in a single statement.
type TemplateRequest struct {
	ID               uuid.UUID         `json:"id"`
	FullName         string            `json:"fullName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	BusinessName     string            `json:"businessName"`
	BusinessType     string            `json:"businessType"`
	BusinessLocation string            `json:"businessLocation"`
	Services         string            `json:"services"`
	Description      string            `json:"description"`
	SelectedTemplate Template          `json:"selectedTemplate"`
	LogoURL          *string           `json:"logoUrl,omitempty"`
	GeneratedContent *GeneratedContent `json:"generatedContent,omitempty"`
	HTMLContent      *string           `json:"htmlContent,omitempty"`
	DeploymentURL    *string           `json:"deploymentUrl,omitempty"`
	Paid             bool              `json:"paid"`
	PaymentIntentID  *string           `json:"stripePaymentIntentId,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// HasContent reports whether generated content and HTML have been attached.
func (t *TemplateRequest) HasContent() bool {
	return t.GeneratedContent != nil && t.HTMLContent != nil
}

// PersonalizedRequest is a request for a paid consultation and custom design.
type PersonalizedRequest struct {
	ID                     uuid.UUID     `json:"id"`
	FullName               string        `json:"fullName"`
	Email                  string        `json:"email"`
	Phone                  string        `json:"phone"`
	BusinessName           string        `json:"businessName"`
	BusinessLocation       string        `json:"businessLocation"`
	BusinessDescription    string        `json:"businessDescription"`
	ColorScheme            *string       `json:"colorScheme,omitempty"`
	StylePreference        *string       `json:"stylePreference,omitempty"`
	Features               []string      `json:"features"`
	AdditionalRequirements *string       `json:"additionalRequirements,omitempty"`
	ConsultationPaid       bool          `json:"consultationPaid"`
	ConsultationCompleted  bool          `json:"consultationCompleted"`
	FinalQuoteCents        *int64        `json:"finalQuoteCents,omitempty"`
	FinalPaid              bool          `json:"finalPaid"`
	ConsultationPaymentID  *string       `json:"stripeConsultationPaymentId,omitempty"`
	FinalPaymentID         *string       `json:"stripeFinalPaymentId,omitempty"`
	Status                 RequestStatus `json:"status"`
	CreatedAt              time.Time     `json:"createdAt"`
}

// FeatureCatalog lists the features a visitor can pick for a custom site.
var FeatureCatalog = []string{
	"Online Booking System",
	"Photo Gallery",
	"Customer Reviews",
	"Social Media Integration",
	"E-commerce (Products)",
	"Blog/News Section",
}

// IsCatalogFeature reports whether name is one of FeatureCatalog.
func IsCatalogFeature(name string) bool {
	for _, f := range FeatureCatalog {
		if f == name {
			return true
		}
	}
	return false
}
