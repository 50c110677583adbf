package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_uploaded_files_total",
		Help: "Jumlah file lampiran yang berhasil disimpan",
	})

	uploadRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_upload_rollbacks_total",
		Help: "Jumlah batch upload yang dibatalkan dan file-nya dihapus kembali",
	})

	physicalDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_physical_deletes_total",
		Help: "Hasil penghapusan fisik file lampiran saat post dihapus",
	}, []string{"result"})

	trackerRecordFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_tracker_record_failures_total",
		Help: "Jumlah kegagalan mencatat file ke tracker; file tersebut tidak terlacak",
	})

	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_sweep_runs_total",
		Help: "Jumlah eksekusi sweep rekonsiliasi per hasil",
	}, []string{"result"})

	sweepDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_sweep_dispatched_total",
		Help: "Jumlah event cleanup yang dikirim oleh sweep",
	})

	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attachment_sweep_duration_seconds",
		Help:    "Durasi eksekusi sweep rekonsiliasi",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
	})

	cleanupResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_cleanup_results_total",
		Help: "Hasil eksekusi event cleanup",
	}, []string{"result"})

	janitorPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_janitor_pruned_total",
		Help: "Jumlah entri tracker yang dibuang karena file sudah tidak ada",
	})
)
