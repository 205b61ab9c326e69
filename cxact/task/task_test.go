/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package task

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestInactiveQueue(t *testing.T) {
	q := NewTaskQueue("test")

	ran := false
	if err := q.Run(func() error { ran = true; return nil }); err != InactiveError {
		t.Fatalf("Run on inactive queue returned %v", err)
	}
	if err := q.Submit(func() error { ran = true; return nil }); err != InactiveError {
		t.Fatalf("Submit on inactive queue returned %v", err)
	}
	if ran {
		t.Fatalf("job ran on inactive queue")
	}
}

func TestFifoOrder(t *testing.T) {
	q := NewTaskQueue("test")
	if err := q.Start(); err != nil {
		t.Fatal(err)
	}
	defer q.Stop(fmt.Errorf("done"))

	var order []int
	const n = 500
	for i := 0; i < n; i++ {
		i := i
		if err := q.Submit(func() error {
			order = append(order, i)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	// Run is queued behind every submitted job.
	q.Run(func() error { return nil })

	if len(order) != n {
		t.Fatalf("ran %d jobs, want %d", len(order), n)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestRunReturnsJobError(t *testing.T) {
	q := NewTaskQueue("test")
	if err := q.Start(); err != nil {
		t.Fatal(err)
	}
	defer q.Stop(fmt.Errorf("done"))

	want := fmt.Errorf("boom")
	if err := q.Run(func() error { return want }); err != want {
		t.Errorf("Run returned %v, want %v", err, want)
	}
}

func TestNoConcurrentJobs(t *testing.T) {
	q := NewTaskQueue("test")
	if err := q.Start(); err != nil {
		t.Fatal(err)
	}
	defer q.Stop(fmt.Errorf("done"))

	var inFlight int32
	var overlaps int32
	var wg sync.WaitGroup

	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				q.Submit(func() error {
					if atomic.AddInt32(&inFlight, 1) != 1 {
						atomic.AddInt32(&overlaps, 1)
					}
					atomic.AddInt32(&inFlight, -1)
					return nil
				})
			}
		}()
	}
	wg.Wait()
	q.Run(func() error { return nil })

	if overlaps != 0 {
		t.Errorf("%d jobs overlapped", overlaps)
	}
}

func TestStopFailsPendingJobs(t *testing.T) {
	q := NewTaskQueue("test")
	if err := q.Start(); err != nil {
		t.Fatal(err)
	}

	block := make(chan struct{})
	started := make(chan struct{})
	q.Submit(func() error {
		close(started)
		<-block
		return nil
	})
	<-started

	pending := q.Enqueue(func() error { return nil })

	cause := fmt.Errorf("stopping")
	if err := q.StopNoWait(cause); err != nil {
		t.Fatal(err)
	}
	close(block)

	if err := <-pending; err != cause {
		t.Errorf("pending job returned %v, want %v", err, cause)
	}

	if err := q.StopNoWait(cause); err == nil {
		t.Errorf("second stop succeeded")
	}
	if q.Active() {
		t.Errorf("queue still active after stop")
	}
}

func TestStartTwice(t *testing.T) {
	q := NewTaskQueue("test")
	if err := q.Start(); err != nil {
		t.Fatal(err)
	}
	defer q.Stop(fmt.Errorf("done"))

	if err := q.Start(); err == nil {
		t.Errorf("second start succeeded")
	}
}
