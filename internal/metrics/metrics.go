package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_studio_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_messages_sent_total",
			Help: "Outbound messages by channel and result.",
		},
		[]string{"channel", "result"},
	)

	OTPValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_otp_validations_total",
			Help: "One-time code validations by result.",
		},
		[]string{"result"},
	)

	GalleryVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_gallery_verifications_total",
			Help: "Gallery access verifications by result.",
		},
		[]string{"result"},
	)

	DownloadBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_download_batches_total",
			Help: "Download tracking requests by result.",
		},
		[]string{"result"},
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_studio_image_uploads_total",
			Help: "Image uploads to the CDN by result.",
		},
		[]string{"result"},
	)
)
