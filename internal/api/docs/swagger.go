package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// VerifyFaceResponse is returned by /functions/verify-face and /v1/registrations
type VerifyFaceResponse struct {
	Match      bool    `json:"match" example:"true"`
	Details    string  `json:"details" example:"Face verification successful."`
	Similarity float64 `json:"similarity,omitempty" example:"97.4"`
}

// SuspendUserResponse is returned after a suspension is recorded
type SuspendUserResponse struct {
	Message string `json:"message" example:"User 6f1c2d3e-0000-4000-8000-000000000001 has been suspended."`
}

// SendWarningResponse is returned after a warning email is accepted
type SendWarningResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Email notification sent."`
}

// FunctionErrorResponse is the bare envelope used by /functions routes
type FunctionErrorResponse struct {
	Error string `json:"error" example:"Missing required parameters."`
}

// ErrorBody is the inner object of the /v1 error envelope
type ErrorBody struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// ErrorResponse represents a standard /v1 error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ValidationErrorBody lists the failing wizard step and its field messages
type ValidationErrorBody struct {
	Code    string            `json:"code" example:"VALIDATION_FAILED"`
	Message string            `json:"message" example:"Password must be at least 8 characters."`
	Step    string            `json:"step" example:"personal_info"`
	Fields  map[string]string `json:"fields"`
}

type ValidationErrorResponse struct {
	Error ValidationErrorBody `json:"error"`
}

// HealthResponse is returned by /health and /ready
type HealthResponse struct {
	Status        string            `json:"status" example:"ok"`
	Version       string            `json:"version" example:"1.0.0"`
	UptimeSeconds int64             `json:"uptime_seconds" example:"3600"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// Moderator metrics

type VerificationTimeline struct {
	Period  string `json:"period" example:"2024-01-01"`
	Total   int64  `json:"total" example:"120"`
	Matched int64  `json:"matched" example:"97"`
	Failed  int64  `json:"failed" example:"23"`
}

type VerificationMetricsData struct {
	Total     int64                  `json:"total" example:"3400"`
	Matched   int64                  `json:"matched" example:"2810"`
	MatchRate float64                `json:"match_rate" example:"0.826"`
	ByMethod  map[string]int64       `json:"by_method"`
	Timeline  []VerificationTimeline `json:"timeline"`
}

type LatencyMetricsData struct {
	AverageMs float64 `json:"average_ms" example:"1840.5"`
	P50Ms     float64 `json:"p50_ms" example:"1520.0"`
	P95Ms     float64 `json:"p95_ms" example:"4100.0"`
	P99Ms     float64 `json:"p99_ms" example:"7900.0"`
}

type Period struct {
	Start string `json:"start" example:"2024-01-01"`
	End   string `json:"end" example:"2024-01-31"`
}

type ResponseMeta struct {
	Period      Period `json:"period"`
	GeneratedAt string `json:"generated_at" example:"2024-02-01T00:00:00Z"`
}

type PaginationMeta struct {
	Total  int `json:"total" example:"31"`
	Limit  int `json:"limit" example:"100"`
	Offset int `json:"offset" example:"0"`
}

type VerificationMetricsResponse struct {
	Data       VerificationMetricsData `json:"data"`
	Meta       ResponseMeta            `json:"meta"`
	Pagination PaginationMeta          `json:"pagination"`
}

type LatencyMetricsResponse struct {
	Data LatencyMetricsData `json:"data"`
	Meta ResponseMeta       `json:"meta"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "ID Verify API",
		Version:     "v1.0.0",
		Description: "Identity verification for account registration: ID document OCR, face matching and moderator actions",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /functions/verify-face
		endpoint.New(
			endpoint.POST,
			"/functions/verify-face",
			endpoint.WithTags("Functions"),
			endpoint.WithSummary("Verify an ID document against a selfie"),
			endpoint.WithDescription("Reads the stored ID image, checks its printed text for the declared ID type and compares the face on it with the selfie. Body: {selfieImageUrl, idFrontUrl, userId, userData{firstName, lastName, date_of_birth, gender}, idType}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyFaceResponse{}, "200", "Verification decided"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(FunctionErrorResponse{Error: "Missing required parameters."}, "400", "Bad Request"),
				response.New(FunctionErrorResponse{Error: "Too many requests"}, "429", "Too Many Requests"),
			}),
		),

		// POST /functions/suspend-user
		endpoint.New(
			endpoint.POST,
			"/functions/suspend-user",
			endpoint.WithTags("Functions"),
			endpoint.WithSummary("Suspend a user"),
			endpoint.WithDescription("Marks the user suspended and records the moderator action. Body: {userIdToSuspend}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SuspendUserResponse{}, "200", "User suspended"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(FunctionErrorResponse{Error: "User not found"}, "400", "Bad Request"),
				response.New(FunctionErrorResponse{Error: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(FunctionErrorResponse{Error: "Access denied"}, "403", "Forbidden"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /functions/send-warning
		endpoint.New(
			endpoint.POST,
			"/functions/send-warning",
			endpoint.WithTags("Functions"),
			endpoint.WithSummary("Email a warning to a user"),
			endpoint.WithDescription("Sends an HTML-escaped warning message through the mail provider. Body: {reportedUser{email, username}, reporter{email, username}, message, reason}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SendWarningResponse{}, "200", "Warning sent"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(FunctionErrorResponse{Error: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(FunctionErrorResponse{Error: "Failed to send email"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// POST /v1/registrations
		endpoint.New(
			endpoint.POST,
			"/v1/registrations",
			endpoint.WithTags("Registration"),
			endpoint.WithSummary("Submit a completed registration form"),
			endpoint.WithDescription("Validates every wizard step, uploads the captured images, runs verification and creates the account when the face matches."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyFaceResponse{}, "200", "Verification decided"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: ErrorBody{Code: "BAD_REQUEST", Message: "Invalid request body"}}, "400", "Bad Request"),
				response.New(ValidationErrorResponse{}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Error: ErrorBody{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}}, "429", "Too Many Requests"),
			}),
		),

		// GET /v1/admin/metrics/verifications
		endpoint.New(
			endpoint.GET,
			"/v1/admin/metrics/verifications",
			endpoint.WithTags("Moderator Metrics"),
			endpoint.WithSummary("Verification outcomes over time"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start_date", parameter.Query, parameter.WithDescription("Inclusive start date (YYYY-MM-DD, default: 30 days ago)")),
				parameter.StrParam("end_date", parameter.Query, parameter.WithDescription("Inclusive end date (YYYY-MM-DD, default: today)")),
				parameter.StrParam("granularity", parameter.Query, parameter.WithDescription("day, week or month (default: day)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationMetricsResponse{}, "200", "Metrics retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: ErrorBody{Code: "BAD_REQUEST", Message: "invalid start_date format, expected YYYY-MM-DD"}}, "400", "Bad Request"),
				response.New(ErrorResponse{Error: ErrorBody{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}}, "401", "Unauthorized"),
				response.New(ErrorResponse{Error: ErrorBody{Code: "FORBIDDEN", Message: "Access denied"}}, "403", "Forbidden"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/admin/metrics/latency
		endpoint.New(
			endpoint.GET,
			"/v1/admin/metrics/latency",
			endpoint.WithTags("Moderator Metrics"),
			endpoint.WithSummary("Verification latency percentiles"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start_date", parameter.Query, parameter.WithDescription("Inclusive start date (YYYY-MM-DD, default: 30 days ago)")),
				parameter.StrParam("end_date", parameter.Query, parameter.WithDescription("Inclusive end date (YYYY-MM-DD, default: today)")),
				parameter.StrParam("granularity", parameter.Query, parameter.WithDescription("day, week or month (default: day)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LatencyMetricsResponse{}, "200", "Metrics retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: ErrorBody{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}}, "401", "Unauthorized"),
				response.New(ErrorResponse{Error: ErrorBody{Code: "FORBIDDEN", Message: "Access denied"}}, "403", "Forbidden"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Pings the database"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
