package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// SignupTotal 注册成功次数。
	SignupTotal prometheus.Counter
	// LoginTotal 登录成功次数。
	LoginTotal prometheus.Counter
	// GemPostCreatedTotal 宝石信息创建次数。
	GemPostCreatedTotal prometheus.Counter
	// GemPostDeletedTotal 宝石信息删除次数。
	GemPostDeletedTotal prometheus.Counter
)

// InitMetrics 注册所有 Prometheus 指标。
//
// 可以安全地重复调用（测试里每个用例都会调一次）。
func InitMetrics() {
	initOnce.Do(func() {
		SignupTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gems_signup_total",
			Help: "Total number of successful signups.",
		})
		LoginTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gems_login_total",
			Help: "Total number of successful logins.",
		})
		GemPostCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gems_gem_posts_created_total",
			Help: "Total number of gem posts created.",
		})
		GemPostDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gems_gem_posts_deleted_total",
			Help: "Total number of gem posts deleted.",
		})

		prometheus.MustRegister(SignupTotal, LoginTotal, GemPostCreatedTotal, GemPostDeletedTotal)
	})
}
