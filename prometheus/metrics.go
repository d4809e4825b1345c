package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_login_total",
			Help: "Total number of company login attempts",
		},
	)

	VendorLoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_vendor_login_total",
			Help: "Total number of vendor login attempts",
		},
	)

	// Partition resolutions by result
	PartitionResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_partition_resolutions_total",
			Help: "Total number of tenant partition resolutions",
		},
		[]string{"result"}, // result is "ok", "config_error" or "open_error"
	)

	// Orphaned records adopted into a tenant
	OrphanAdoptionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_orphan_adoptions_total",
			Help: "Total number of legacy records adopted into a tenant",
		},
	)

	// Company operation counter
	CompanyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_company_operations_total",
			Help: "Total number of vendor company operations",
		},
		[]string{"operation"}, // operation can be "create", "update", "delete", "status", "list"
	)

	// Vouchers created (and therefore invoice numbers minted)
	VoucherCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_vouchers_created_total",
			Help: "Total number of vouchers created",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_credentials", "inactive_company", "invalid_token" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Open partition handles
	OpenPartitionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "billing_open_partitions",
			Help: "Number of tenant partition handles held in the process cache",
		},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(VendorLoginCounter)
	prometheus.MustRegister(PartitionResolutionCounter)
	prometheus.MustRegister(OrphanAdoptionCounter)
	prometheus.MustRegister(CompanyOperationCounter)
	prometheus.MustRegister(VoucherCreatedCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(OpenPartitionsGauge)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordPartitionResolution records the outcome of a partition resolution
func RecordPartitionResolution(result string) {
	PartitionResolutionCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordOrphanAdoptions records how many legacy records a sweep adopted
func RecordOrphanAdoptions(count int) {
	OrphanAdoptionCounter.Add(float64(count))
}

// RecordCompanyOperation records a vendor operation on the companies registry
func RecordCompanyOperation(operation string) {
	CompanyOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
