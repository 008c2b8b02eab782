package file

import (
	"time"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// PipelineConfigFrom builds a PipelineConfig by overlaying stored values
// on the defaults. Unset or zero-valued keys keep their default.
func PipelineConfigFrom(cs driven.ConfigStore) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if v := cs.GetFloat("pipeline.doc_similarity_threshold"); v > 0 {
		cfg.DocSimilarityThreshold = v
	}
	if v := cs.GetFloat("pipeline.page_similarity_threshold"); v > 0 {
		cfg.PageSimilarityThreshold = v
	}
	if v := cs.GetFloat("pipeline.cluster_threshold"); v > 0 {
		cfg.ClusterThreshold = v
	}
	if v := cs.GetInt("pipeline.min_cluster_size"); v > 0 {
		cfg.MinClusterSize = v
	}
	if v := cs.GetFloat("pipeline.lsh_jaccard_threshold"); v > 0 {
		cfg.LSHJaccardThreshold = v
	}
	if v := cs.GetInt("pipeline.lsh_num_permutations"); v > 0 {
		cfg.LSHNumPermutations = v
	}
	if v := cs.GetInt("pipeline.min_text_length"); v > 0 {
		cfg.MinTextLength = v
	}
	if v := cs.GetInt("pipeline.snippet_length"); v > 0 {
		cfg.SnippetLength = v
	}
	if v := cs.GetInt("pipeline.stage_timeout_seconds"); v > 0 {
		cfg.StageTimeout = time.Duration(v) * time.Second
	}

	return cfg
}

// SchedulerConfigFrom builds a SchedulerConfig by overlaying stored
// values on the defaults. Per-task keys live under scheduler.<task-id>
// with the "-" in task IDs replaced by "_".
func SchedulerConfigFrom(cs driven.ConfigStore) domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()

	if _, ok := cs.Get("scheduler.enabled"); ok {
		cfg.Enabled = cs.GetBool("scheduler.enabled")
	}

	for taskID, tc := range cfg.TaskConfigs {
		prefix := "scheduler." + taskKey(taskID)
		if _, ok := cs.Get(prefix + ".enabled"); ok {
			tc.Enabled = cs.GetBool(prefix + ".enabled")
		}
		if v := cs.GetInt(prefix + ".interval_seconds"); v > 0 {
			tc.Interval = time.Duration(v) * time.Second
		}
		cfg.TaskConfigs[taskID] = tc
	}

	return cfg
}

func taskKey(taskID string) string {
	out := make([]byte, len(taskID))
	for i := 0; i < len(taskID); i++ {
		if taskID[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = taskID[i]
		}
	}
	return string(out)
}
