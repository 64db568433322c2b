package service

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
)

// InsightsServiceName is the fully-qualified name of the insights service.
const InsightsServiceName = "pfinance.insights.v1.InsightsService"

// Procedure paths, one per unary RPC.
const (
	ClassifyTransactionsProcedure = "/" + InsightsServiceName + "/ClassifyTransactions"
	GetSpendingInsightsProcedure  = "/" + InsightsServiceName + "/GetSpendingInsights"
	DetectRecurringProcedure      = "/" + InsightsServiceName + "/DetectRecurring"
	DetectAnomaliesProcedure      = "/" + InsightsServiceName + "/DetectAnomalies"
	ForecastSpendingProcedure     = "/" + InsightsServiceName + "/ForecastSpending"
	EstimateTaxesProcedure        = "/" + InsightsServiceName + "/EstimateTaxes"
	GetFinancialHealthProcedure   = "/" + InsightsServiceName + "/GetFinancialHealth"
	AnalyzeGoalProcedure          = "/" + InsightsServiceName + "/AnalyzeGoal"
	CreateFinancialPlanProcedure  = "/" + InsightsServiceName + "/CreateFinancialPlan"
	GetWeeklyDigestProcedure      = "/" + InsightsServiceName + "/GetWeeklyDigest"
)

// JSONCodec encodes messages as plain JSON under the Connect "json" codec name,
// so requests use Content-Type application/json.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// NewInsightsServiceHandler builds an HTTP handler serving every procedure of
// the service. It returns the path prefix to mount the handler on.
func NewInsightsServiceHandler(svc *InsightsService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	routes := http.NewServeMux()
	routes.Handle(ClassifyTransactionsProcedure, connect.NewUnaryHandler(ClassifyTransactionsProcedure, svc.ClassifyTransactions, opts...))
	routes.Handle(GetSpendingInsightsProcedure, connect.NewUnaryHandler(GetSpendingInsightsProcedure, svc.GetSpendingInsights, opts...))
	routes.Handle(DetectRecurringProcedure, connect.NewUnaryHandler(DetectRecurringProcedure, svc.DetectRecurring, opts...))
	routes.Handle(DetectAnomaliesProcedure, connect.NewUnaryHandler(DetectAnomaliesProcedure, svc.DetectAnomalies, opts...))
	routes.Handle(ForecastSpendingProcedure, connect.NewUnaryHandler(ForecastSpendingProcedure, svc.ForecastSpending, opts...))
	routes.Handle(EstimateTaxesProcedure, connect.NewUnaryHandler(EstimateTaxesProcedure, svc.EstimateTaxes, opts...))
	routes.Handle(GetFinancialHealthProcedure, connect.NewUnaryHandler(GetFinancialHealthProcedure, svc.GetFinancialHealth, opts...))
	routes.Handle(AnalyzeGoalProcedure, connect.NewUnaryHandler(AnalyzeGoalProcedure, svc.AnalyzeGoal, opts...))
	routes.Handle(CreateFinancialPlanProcedure, connect.NewUnaryHandler(CreateFinancialPlanProcedure, svc.CreateFinancialPlan, opts...))
	routes.Handle(GetWeeklyDigestProcedure, connect.NewUnaryHandler(GetWeeklyDigestProcedure, svc.GetWeeklyDigest, opts...))

	return "/" + InsightsServiceName + "/", routes
}

// Register mounts the service and the health check on router.
func Register(router *mux.Router, svc *InsightsService, opts ...connect.HandlerOption) {
	path, handler := NewInsightsServiceHandler(svc, opts...)
	router.PathPrefix(path).Handler(handler)
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
