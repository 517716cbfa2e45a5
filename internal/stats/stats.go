// Package stats provides pure rollup helpers over already-fetched
// survey collections. Nothing here touches the database; the grouped
// SQL rollups live in internal/store.
package stats

import (
	"sort"

	"github.com/edusurvey/apiserver/types"
)

// UniqueValues returns the distinct values across the given lists, in
// first-appearance order. Nil lists contribute nothing.
func UniqueValues(lists ...[]string) []string {
	seen := make(map[string]struct{})
	unique := make([]string, 0)
	for _, list := range lists {
		for _, value := range list {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			unique = append(unique, value)
		}
	}
	return unique
}

// CountValues builds a distribution over the given lists, ordered by
// descending count with ties broken by first appearance. Nil lists
// contribute zero.
func CountValues(lists ...[]string) []types.DistributionRow {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, list := range lists {
		for _, value := range list {
			if _, ok := counts[value]; !ok {
				order = append(order, value)
			}
			counts[value]++
		}
	}

	rank := make(map[string]int, len(order))
	for i, value := range order {
		rank[value] = i
	}

	dist := make([]types.DistributionRow, 0, len(order))
	for _, value := range order {
		dist = append(dist, types.DistributionRow{Value: value, Count: counts[value]})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return rank[dist[i].Value] < rank[dist[j].Value]
	})
	return dist
}

// RankOrdered reorders a distribution to follow the given fixed rank.
// Values missing from the rank sink to the end in their incoming order;
// ranked values absent from the input are skipped, not zero-filled.
func RankOrdered(dist []types.DistributionRow, rankOrder []string) []types.DistributionRow {
	rank := make(map[string]int, len(rankOrder))
	for i, value := range rankOrder {
		rank[value] = i
	}

	ordered := make([]types.DistributionRow, len(dist))
	copy(ordered, dist)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iOK := rank[ordered[i].Value]
		rj, jOK := rank[ordered[j].Value]
		if iOK && jOK {
			return ri < rj
		}
		return iOK && !jOK
	})
	return ordered
}
