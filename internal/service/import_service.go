package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"

	importBatchSize = 500
)

// importColumns is the required CSV header, in any order.
var importColumns = []string{"fullName", "roll", "class", "age", "hallName", "status"}

type ProgressInfo struct {
	FileName     string     `json:"fileName"`
	TotalRecords int        `json:"totalRecords"`
	Processed    int        `json:"processed"`
	Imported     int        `json:"imported"`
	Failed       int        `json:"failed"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
}

// ImportService loads students from CSV files into the Student collection.
// Each file is split across a pool of workers; progress is kept per file and
// pushed to registered listeners. Imports run under the context given to
// NewImportService and are cancelled by Close.
type ImportService struct {
	students database.Collection
	ctx      context.Context
	cancel   context.CancelFunc

	fileProgressMap   map[string]*ProgressInfo
	fileProgressLock  sync.RWMutex
	progressListeners map[chan *ProgressInfo]bool
	listenerLock      sync.RWMutex

	workerSemaphore chan struct{}
	inFlight        sync.WaitGroup
}

func NewImportService(ctx context.Context, students database.Collection) *ImportService {
	maxWorkers := runtime.NumCPU() * 2
	ctx, cancel := context.WithCancel(ctx)

	return &ImportService{
		students:          students,
		ctx:               ctx,
		cancel:            cancel,
		fileProgressMap:   make(map[string]*ProgressInfo),
		progressListeners: make(map[chan *ProgressInfo]bool),
		workerSemaphore:   make(chan struct{}, maxWorkers),
	}
}

func (s *ImportService) RegisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	s.progressListeners[ch] = true
}

func (s *ImportService) UnregisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	delete(s.progressListeners, ch)
}

// BroadcastProgress sends a copy of progress to every listener that is ready
// to receive; slow listeners miss the update.
func (s *ImportService) BroadcastProgress(progress *ProgressInfo) {
	s.listenerLock.RLock()
	defer s.listenerLock.RUnlock()

	for listener := range s.progressListeners {
		snapshot := *progress
		select {
		case listener <- &snapshot:
		default:
		}
	}
}

func (s *ImportService) GetFileProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		copyProgress := *progress
		return &copyProgress
	}
	return nil
}

func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		copyProgress := *progress
		result = append(result, &copyProgress)
	}
	return result
}

// Start imports filePath in the background. Wait blocks until every started
// import has returned.
func (s *ImportService) Start(filePath string) {
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		if err := s.ProcessCSV(s.ctx, filePath); err != nil {
			log.Printf("service=import msg=%q file=%s err=%v", "import_failed", filePath, err)
		}
	}()
}

func (s *ImportService) Wait() {
	s.inFlight.Wait()
}

// Close cancels running imports and waits for them to return.
func (s *ImportService) Close() {
	s.cancel()
	s.inFlight.Wait()
}

func (s *ImportService) addProgress(fileName string, processed, imported, failed int) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Processed += processed
		progress.Imported += imported
		progress.Failed += failed
		if progress.TotalRecords > 0 && progress.Processed > progress.TotalRecords {
			progress.Processed = progress.TotalRecords
		}
		s.BroadcastProgress(progress)
	}
}

func (s *ImportService) finishProgress(fileName, status, errorMsg string) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Status = status
		progress.Error = errorMsg
		now := time.Now()
		progress.EndTime = &now
		s.BroadcastProgress(progress)
	}
}

// ProcessCSV reads a student CSV file and inserts its valid rows. Rows that
// fail validation, and exact repeats of an earlier row in the file, are
// counted as failed. Rolls are not unique, so a shared roll alone is fine.
func (s *ImportService) ProcessCSV(ctx context.Context, filePath string) error {
	fileName := filepath.Base(filePath)
	startTime := time.Now()

	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName] = &ProgressInfo{
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: startTime,
	}
	s.fileProgressLock.Unlock()

	fail := func(msg string, err error) error {
		s.finishProgress(fileName, StatusError, msg+": "+err.Error())
		return fmt.Errorf("%s: %w", msg, err)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fail("failed to get file info", err)
	}

	totalRecords, err := countRecords(filePath)
	if err != nil {
		return fail("failed to count records", err)
	}
	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName].TotalRecords = totalRecords
	s.fileProgressLock.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		return fail("failed to open file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return fail("failed to read header", err)
	}
	columns, err := headerIndex(header)
	if err != nil {
		return fail("invalid header", err)
	}

	numWorkers := calculateWorkers(fileInfo.Size())
	log.Printf("service=import msg=%q file=%s workers=%d bytes=%d", "import_started", fileName, numWorkers, fileInfo.Size())

	rowCh := make(chan []string, numWorkers*100)
	errCh := make(chan error, numWorkers)
	var wg sync.WaitGroup
	var seenRows sync.Map

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.worker(ctx, fileName, columns, rowCh, &seenRows); err != nil {
				errCh <- err
			}
		}()
	}

	malformed := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed++
			continue
		}
		rowCh <- record
	}
	close(rowCh)
	wg.Wait()
	close(errCh)

	if malformed > 0 {
		s.addProgress(fileName, malformed, 0, malformed)
	}

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fail("failed to save students", errors.Join(errs...))
	}

	s.finishProgress(fileName, StatusCompleted, "")
	log.Printf("service=import msg=%q file=%s elapsed=%s", "import_completed", fileName, time.Since(startTime))
	return nil
}

func (s *ImportService) worker(ctx context.Context, fileName string, columns map[string]int, rowCh <-chan []string, seenRows *sync.Map) error {
	s.workerSemaphore <- struct{}{}
	defer func() { <-s.workerSemaphore }()

	var (
		batch    []database.Document
		failed   int
		pending  int
		firstErr error
	)

	flush := func() {
		imported := 0
		if len(batch) > 0 && firstErr == nil {
			saved, err := s.saveBatch(ctx, batch)
			if err != nil {
				firstErr = err
			}
			imported = saved
		}
		failed += len(batch) - imported
		s.addProgress(fileName, pending, imported, failed)
		batch, failed, pending = nil, 0, 0
	}

	// Drain the channel even after a failed save so the reader never blocks.
	for record := range rowCh {
		pending++
		student, err := parseStudent(record, columns)
		if err != nil {
			failed++
			continue
		}
		if _, dup := seenRows.LoadOrStore(rowKey(student), true); dup {
			log.Printf("service=import msg=%q file=%s roll=%s", "duplicate_row_skipped", fileName, student.Roll)
			failed++
			continue
		}
		batch = append(batch, student)
		if len(batch) >= importBatchSize {
			flush()
		}
	}
	flush()
	return firstErr
}

// saveBatch returns how many documents were stored. An unordered insert can
// store part of the batch and still fail.
func (s *ImportService) saveBatch(ctx context.Context, batch []database.Document) (int, error) {
	res, err := s.students.InsertMany(ctx, batch)
	saved := 0
	if res != nil {
		saved = min(len(res.InsertedIDs), len(batch))
	}
	if err != nil {
		return saved, storageErr("insert students", err)
	}
	return len(batch), nil
}

// rowKey identifies a student row by every imported field.
func rowKey(st *model.Student) string {
	return strings.Join([]string{
		st.FullName, string(st.Roll), st.Class, strconv.Itoa(st.Age), st.HallName, st.Status,
	}, "\x1f")
}

func parseStudent(record []string, columns map[string]int) (*model.Student, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	age, err := strconv.Atoi(field("age"))
	if err != nil {
		return nil, fmt.Errorf("age: %w", err)
	}
	student := &model.Student{
		FullName: field("fullName"),
		Roll:     model.Roll(field("roll")),
		Class:    field("class"),
		Age:      age,
		HallName: field("hallName"),
		Status:   field("status"),
	}
	if err := validateStruct(student); err != nil {
		return nil, err
	}
	return student, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range importColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// calculateWorkers picks the worker count from the file size.
func calculateWorkers(fileSize int64) int {
	cpus := runtime.NumCPU()

	switch {
	case fileSize < 1_000_000:
		return min(2, cpus)
	case fileSize < 10_000_000:
		return min(4, cpus)
	case fileSize < 100_000_000:
		return min(8, cpus)
	default:
		return cpus
	}
}

// countRecords returns the number of data rows, excluding the header.
func countRecords(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
