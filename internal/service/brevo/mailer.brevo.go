package brevo

import (
	"context"
	"fmt"
	"time"
)

// Mailer renders Twiller's transactional messages on top of the raw client.
type Mailer struct {
	client *Client
}

func NewMailer(client *Client) *Mailer {
	return &Mailer{client: client}
}

func otpEmailBody(heading, lead, code string, ttl time.Duration) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e1e8ed; border-radius: 12px;">
  <h1 style="color: #1DA1F2; text-align: center;">%s</h1>
  <p style="font-size: 16px; color: #5b7083; text-align: center;">%s</p>
  <div style="background-color: #f7f9f9; padding: 25px; border-radius: 8px; text-align: center;">
    <span style="font-size: 36px; font-weight: bold; letter-spacing: 6px;">%s</span>
  </div>
  <p style="font-size: 14px; color: #8899a6; text-align: center;">This code will expire in <strong>%d minutes</strong> and is for single-use only.</p>
  <p style="font-size: 12px; color: #8899a6; text-align: center;">If you didn't request this code, please ignore this email.</p>
</div>`, heading, lead, code, int(ttl.Minutes()))
}

func (m *Mailer) SendLoginOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.client.SendEmail(ctx, email,
		"Your Twiller Login Verification Code",
		otpEmailBody("Login Verification", "Verify your identity to complete signing in to Twiller.", code, ttl))
}

func (m *Mailer) SendUploadOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.client.SendEmail(ctx, email,
		"Your Twiller Audio Verification Code",
		otpEmailBody("Audio Tweet Verification", "Verify your identity to enable high-quality audio features on Twiller.", code, ttl))
}

func (m *Mailer) SendLanguageOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	return m.client.SendEmail(ctx, email,
		"Language Change Verification",
		otpEmailBody("Language Change", "Confirm the language change on your Twiller account.", code, ttl))
}

func (m *Mailer) SendLanguageSMS(ctx context.Context, mobile, code string, ttl time.Duration) error {
	return m.client.SendSMS(ctx, mobile,
		fmt.Sprintf("Your Twiller verification code is: %s. It will expire in %d minutes.", code, int(ttl.Minutes())))
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, newPassword string) error {
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e1e8ed; border-radius: 12px;">
  <h1 style="color: #1DA1F2; text-align: center;">Password Reset Successful</h1>
  <p style="font-size: 16px; color: #5b7083; text-align: center;">Your Twiller password has been reset. Please use the temporary password below to log in.</p>
  <div style="background-color: #f7f9f9; padding: 25px; border-radius: 8px; text-align: center; border: 1px dashed #1DA1F2;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 2px;">%s</span>
  </div>
  <p style="font-size: 14px; color: #8899a6; text-align: center;">This password contains alphabetical characters only. We recommend changing it after your first login.</p>
  <p style="font-size: 12px; color: #8899a6; text-align: center;">If you didn't request this change, please contact support immediately.</p>
</div>`, newPassword)
	return m.client.SendEmail(ctx, email, "Your New Twiller Password", body)
}

type InvoiceData struct {
	PlanName      string
	Amount        int
	InvoiceNumber string
	PaymentDate   string
	ExpiryDate    string
	TweetLimit    string
}

func (m *Mailer) SendInvoice(ctx context.Context, email string, inv InvoiceData) error {
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e1e8ed; border-radius: 12px;">
  <h1 style="color: #1DA1F2; text-align: center;">Twiller %s Subscription</h1>
  <table style="width: 100%%; font-size: 14px; color: #5b7083;">
    <tr><td>Invoice</td><td style="text-align: right;">%s</td></tr>
    <tr><td>Amount</td><td style="text-align: right;">INR %d</td></tr>
    <tr><td>Payment date</td><td style="text-align: right;">%s</td></tr>
    <tr><td>Valid until</td><td style="text-align: right;">%s</td></tr>
    <tr><td>Tweet limit</td><td style="text-align: right;">%s</td></tr>
  </table>
  <p style="font-size: 12px; color: #8899a6; text-align: center;">Thank you for subscribing to Twiller.</p>
</div>`, inv.PlanName, inv.InvoiceNumber, inv.Amount, inv.PaymentDate, inv.ExpiryDate, inv.TweetLimit)
	return m.client.SendEmail(ctx, email, fmt.Sprintf("Your Twiller Invoice - %s", inv.InvoiceNumber), body)
}
