package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// APITestStats 请求统计
type APITestStats struct {
	mu        sync.Mutex
	total     int
	succeeded int
	failed    int
	latencies []time.Duration
}

// Add 记录一次请求结果
func (s *APITestStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if !success {
		s.failed++
		return
	}
	s.succeeded++
	s.latencies = append(s.latencies, latency)
}

// Percentile 成功请求的延迟分位数，p 取 0~100
func (s *APITestStats) Percentile(p float64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), s.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p / 100 * float64(len(sorted)-1))
	return sorted[idx]
}

// Average 成功请求的平均延迟
func (s *APITestStats) Average() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	return sum / time.Duration(len(s.latencies))
}

var client = &http.Client{Timeout: 8 * time.Second}

// heartbeat 发送一次心跳，返回服务端统计的在线人数
func heartbeat(base, sessionID string) (int64, error) {
	body, _ := json.Marshal(map[string]string{"sessionId": sessionID})
	resp, err := client.Post(base+"/api/v1/online", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out struct {
		OnlineUsers int64 `json:"onlineUsers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.OnlineUsers, nil
}

func countOnline(base string) error {
	resp, err := client.Get(base + "/api/v1/online")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func run(base string, concurrency, perWorker int, interval time.Duration) (*APITestStats, *APITestStats, int64) {
	beats, counts := &APITestStats{}, &APITestStats{}
	var (
		wg       sync.WaitGroup
		maxSeen  int64
		maxMutex sync.Mutex
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 每个协程模拟一个客户端会话
			session := "bench-" + uuid.NewString()
			for j := 0; j < perWorker; j++ {
				start := time.Now()
				online, err := heartbeat(base, session)
				beats.Add(err == nil, time.Since(start))
				if err == nil {
					maxMutex.Lock()
					if online > maxSeen {
						maxSeen = online
					}
					maxMutex.Unlock()
				}

				start = time.Now()
				err = countOnline(base)
				counts.Add(err == nil, time.Since(start))

				time.Sleep(interval)
			}
		}()
	}
	wg.Wait()
	return beats, counts, maxSeen
}

func report(name string, s *APITestStats, took time.Duration) {
	fmt.Printf("\n[%s]\n", name)
	fmt.Printf("总请求: %d 成功: %d 失败: %d\n", s.total, s.succeeded, s.failed)
	fmt.Printf("延迟 平均: %v p50: %v p95: %v p99: %v\n", s.Average(), s.Percentile(50), s.Percentile(95), s.Percentile(99))
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(s.succeeded)/took.Seconds())
	}
}

func main() {
	base := flag.String("base", "http://localhost:8080", "服务地址")
	concurrency := flag.Int("c", 20, "并发会话数")
	perWorker := flag.Int("n", 50, "每个会话的心跳次数")
	interval := flag.Duration("interval", 10*time.Millisecond, "两次心跳之间的间隔")
	flag.Parse()

	fmt.Println("=== 在线状态压测 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("目标: %s 并发: %d 每会话心跳: %d\n", *base, *concurrency, *perWorker)

	start := time.Now()
	beats, counts, maxSeen := run(*base, *concurrency, *perWorker, *interval)
	took := time.Since(start)

	fmt.Printf("\n耗时: %v\n", took)
	report("POST /api/v1/online", beats, took)
	report("GET /api/v1/online", counts, took)
	fmt.Printf("\n观察到的最大在线人数: %d（本次会话数 %d）\n", maxSeen, *concurrency)
}
