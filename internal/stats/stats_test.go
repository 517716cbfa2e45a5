package stats

import (
	"reflect"
	"testing"

	"github.com/edusurvey/apiserver/types"
)

func TestUniqueValues(t *testing.T) {
	got := UniqueValues(
		[]string{"ChatGPT", "Claude"},
		nil,
		[]string{"Claude", "Gemini", "ChatGPT"},
	)
	want := []string{"ChatGPT", "Claude", "Gemini"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected unique values: %v", got)
	}
}

func TestUniqueValuesEmpty(t *testing.T) {
	got := UniqueValues(nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestCountValuesOrdersByCountDesc(t *testing.T) {
	got := CountValues(
		[]string{"Homework", "Research"},
		[]string{"Research"},
		[]string{"Research", "Writing"},
	)
	want := []types.DistributionRow{
		{Value: "Research", Count: 3},
		{Value: "Homework", Count: 1},
		{Value: "Writing", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected distribution: %v", got)
	}
}

func TestCountValuesTieBreakIsFirstAppearance(t *testing.T) {
	got := CountValues([]string{"b", "a"}, []string{"a", "b"})
	want := []types.DistributionRow{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tie order: %v", got)
	}
}

func TestRankOrdered(t *testing.T) {
	dist := []types.DistributionRow{
		{Value: types.FrequencyNever, Count: 7},
		{Value: types.FrequencyVeryOften, Count: 2},
		{Value: types.FrequencyOccasionally, Count: 4},
	}
	got := RankOrdered(dist, types.FrequencyRankOrder)
	want := []types.DistributionRow{
		{Value: types.FrequencyVeryOften, Count: 2},
		{Value: types.FrequencyOccasionally, Count: 4},
		{Value: types.FrequencyNever, Count: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected rank order: %v", got)
	}
}

func TestRankOrderedUnknownValuesSink(t *testing.T) {
	dist := []types.DistributionRow{
		{Value: "Sometimes", Count: 1},
		{Value: types.FrequencyNever, Count: 2},
	}
	got := RankOrdered(dist, types.FrequencyRankOrder)
	if got[0].Value != types.FrequencyNever || got[1].Value != "Sometimes" {
		t.Fatalf("unexpected order: %v", got)
	}
}
