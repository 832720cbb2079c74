package main

import (
	"flag"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	URL             string
	ConcurrentUsers int
	RequestsPerUser int
	Timeout         time.Duration
	ThinkTime       time.Duration
}

// LoadTestResult holds the result of a single request
type LoadTestResult struct {
	StatusCode int
	Duration   time.Duration
	Success    bool
}

// LoadTestSummary holds the summary of load test results
type LoadTestSummary struct {
	TotalRequests       int
	SuccessfulRequests  int
	FailedRequests      int
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	MinResponseTime     time.Duration
	MaxResponseTime     time.Duration
	RequestsPerSecond   float64
	ErrorRate           float64
	ResponseTime95th    time.Duration
}

func main() {
	var config LoadTestConfig

	flag.StringVar(&config.URL, "url", "http://localhost:3001/api/rates", "Target URL to test")
	flag.IntVar(&config.ConcurrentUsers, "users", 10, "Number of concurrent users")
	flag.IntVar(&config.RequestsPerUser, "requests", 100, "Number of requests per user")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.DurationVar(&config.ThinkTime, "think", 0, "Think time between requests")
	flag.Parse()

	fmt.Printf("Load testing %s with %d users x %d requests\n\n", config.URL, config.ConcurrentUsers, config.RequestsPerUser)

	summary := runLoadTest(config, &http.Client{Timeout: config.Timeout})
	printSummary(summary)
}

func runLoadTest(config LoadTestConfig, client *http.Client) LoadTestSummary {
	results := make(chan LoadTestResult, config.ConcurrentUsers*config.RequestsPerUser)
	startTime := time.Now()

	var wg sync.WaitGroup
	for userID := 0; userID < config.ConcurrentUsers; userID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for reqID := 0; reqID < config.RequestsPerUser; reqID++ {
				results <- makeRequest(client, config.URL)
				if config.ThinkTime > 0 {
					time.Sleep(config.ThinkTime)
				}
			}
		}()
	}

	wg.Wait()
	close(results)

	return processResults(results, time.Since(startTime))
}

func makeRequest(client *http.Client, url string) LoadTestResult {
	start := time.Now()
	resp, err := client.Get(url)
	result := LoadTestResult{Duration: time.Since(start)}
	if err != nil {
		return result
	}
	resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	return result
}

func processResults(results <-chan LoadTestResult, totalDuration time.Duration) LoadTestSummary {
	summary := LoadTestSummary{TotalDuration: totalDuration}
	var responseTimes []time.Duration
	var totalResponseTime time.Duration

	for result := range results {
		summary.TotalRequests++
		responseTimes = append(responseTimes, result.Duration)
		totalResponseTime += result.Duration
		if result.Success {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}
	}

	if summary.TotalRequests == 0 {
		return summary
	}

	sort.Slice(responseTimes, func(i, j int) bool { return responseTimes[i] < responseTimes[j] })

	summary.ErrorRate = float64(summary.FailedRequests) / float64(summary.TotalRequests) * 100
	if totalDuration > 0 {
		summary.RequestsPerSecond = float64(summary.TotalRequests) / totalDuration.Seconds()
	}
	summary.MinResponseTime = responseTimes[0]
	summary.MaxResponseTime = responseTimes[len(responseTimes)-1]
	summary.AverageResponseTime = totalResponseTime / time.Duration(len(responseTimes))
	summary.ResponseTime95th = percentile(responseTimes, 95)

	return summary
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := len(sorted) * p / 100
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func printSummary(summary LoadTestSummary) {
	fmt.Println("=== Load Test Results ===")
	fmt.Printf("Total Requests: %d\n", summary.TotalRequests)
	fmt.Printf("Successful Requests: %d\n", summary.SuccessfulRequests)
	fmt.Printf("Failed Requests: %d (%.2f%%)\n", summary.FailedRequests, summary.ErrorRate)
	fmt.Printf("Total Duration: %v\n", summary.TotalDuration)
	fmt.Printf("Requests per Second: %.2f\n", summary.RequestsPerSecond)
	fmt.Printf("Average Response Time: %v\n", summary.AverageResponseTime)
	fmt.Printf("Min Response Time: %v\n", summary.MinResponseTime)
	fmt.Printf("Max Response Time: %v\n", summary.MaxResponseTime)
	fmt.Printf("95th Percentile Response Time: %v\n", summary.ResponseTime95th)
}
