package core

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"gotest.tools/assert"
)

type mockedResultStream struct {
	max     int
	current int
	sleep   time.Duration
	meta    *Meta
}

func newMockedResultStream(maxRows int, sleep time.Duration) *mockedResultStream {
	return &mockedResultStream{
		max:   maxRows,
		sleep: sleep,
		meta:  &Meta{EngineTimeMS: 1.5, HasEngineTime: true},
	}
}

func (mir *mockedResultStream) Meta() *Meta {
	return mir.meta
}

func (mir *mockedResultStream) Header() Header {
	return Header{"id", "name"}
}

func (mir *mockedResultStream) Next() (Row, error) {
	if mir.current < mir.max {
		time.Sleep(mir.sleep)

		num := mir.current
		mir.current++
		return Row{strconv.Itoa(num), "row_" + strconv.Itoa(num)}, nil
	}

	return nil, errors.New("no next row")
}

func (mir *mockedResultStream) HasNext() bool {
	return mir.current < mir.max
}

func (mir *mockedResultStream) Close() {}

func (mir *mockedResultStream) Range(from int, to int) []Row {
	var rows []Row

	for i := from; i < to; i++ {
		rows = append(rows, Row{strconv.Itoa(i), "row_" + strconv.Itoa(i)})
	}
	return rows
}

func TestResult_Rows(t *testing.T) {
	result := new(Result)

	numOfRows := 10
	stream := newMockedResultStream(numOfRows, 0)

	err := result.SetIter(stream, nil)
	assert.NilError(t, err)

	testCases := []struct {
		name          string
		from          int
		to            int
		before        func()
		expectedRows  []Row
		expectedError error
	}{
		{
			name:         "get all",
			from:         0,
			to:           -1,
			expectedRows: stream.Range(0, numOfRows),
		},
		{
			name:         "get basic range",
			from:         0,
			to:           3,
			expectedRows: stream.Range(0, 3),
		},
		{
			name:         "get last 2",
			from:         -3,
			to:           -1,
			expectedRows: stream.Range(numOfRows-2, numOfRows),
		},
		{
			name:         "range past the end is clamped",
			from:         8,
			to:           20,
			expectedRows: stream.Range(8, numOfRows),
		},
		{
			name:          "invalid range",
			from:          5,
			to:            1,
			expectedError: ErrInvalidRange(5, 1),
		},
		{
			name:          "undefined range",
			from:          -5,
			to:            10,
			expectedError: ErrInvalidRange(-5, 10),
		},
		{
			name:         "wait for available index",
			from:         0,
			to:           3,
			expectedRows: stream.Range(0, 3),
			before: func() {
				result.Wipe()
				err := result.SetIter(newMockedResultStream(numOfRows, 50*time.Millisecond), nil)
				assert.NilError(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.before != nil {
				tc.before()
			}

			rows, err := result.Rows(tc.from, tc.to)
			if tc.expectedError != nil {
				assert.Error(t, err, tc.expectedError.Error())
				return
			}

			assert.NilError(t, err)
			assert.DeepEqual(t, rows, tc.expectedRows)
		})
	}
}

func TestResult_MetaAndHeader(t *testing.T) {
	result := new(Result)

	// an unfilled result still has usable metadata
	assert.Equal(t, result.Meta().HasEngineTime, false)
	assert.Equal(t, result.IsEmpty(), true)

	err := result.SetIter(newMockedResultStream(2, 0), nil)
	assert.NilError(t, err)

	assert.DeepEqual(t, result.Header(), Header{"id", "name"})
	assert.Equal(t, result.Meta().EngineTimeMS, 1.5)
	assert.Equal(t, result.Len(), 2)
	assert.Equal(t, result.IsEmpty(), false)

	all, err := result.All()
	assert.NilError(t, err)
	assert.Equal(t, len(all), 2)
}
