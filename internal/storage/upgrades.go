package storage

import (
	"strings"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Legacy on-disk values migrated by the column upgrade rules.
const (
	legacyUIAssetTypeID     = "derp.ui"
	legacyChartImmediateTag = "ChartImmediate"
)

// columnUpgrade rewrites one legacy column shape into the current one. Rules
// are pure and idempotent; they run in order on every decoded column before
// any other interpretation.
type columnUpgrade struct {
	name  string
	apply func(c columnJSON) columnJSON
}

var columnUpgrades = []columnUpgrade{
	{name: "ui-asset-type-tag", apply: upgradeUIAssetTypeTag},
	{name: "live-preview-priority", apply: upgradeLivePreviewPriority},
}

// upgradeUIAssetTypeTag turns the old "derp.ui" plugin type into the
// built-in UiAsset kind.
func upgradeUIAssetTypeTag(c columnJSON) columnJSON {
	if c.TypeID == legacyUIAssetTypeID {
		c.Kind = string(types.KindUIAsset)
		c.TypeID = types.BuiltinTypeID(types.KindUIAsset)
	}
	return c
}

// upgradeLivePreviewPriority keeps a parseable evalScope and otherwise
// translates the ChartImmediate tag, found in either field, into the
// Interactive scope.
func upgradeLivePreviewPriority(c columnJSON) columnJSON {
	legacy := c.LivePreviewPriority
	c.LivePreviewPriority = ""
	if strings.TrimSpace(c.EvalScope) == legacyChartImmediateTag {
		c.EvalScope = types.EvalInteractive.String()
		return c
	}
	if _, ok := types.ParseEvalScope(c.EvalScope); ok && c.EvalScope != "" {
		return c
	}
	if legacy == legacyChartImmediateTag {
		c.EvalScope = types.EvalInteractive.String()
	}
	return c
}

func upgradeColumn(c columnJSON) columnJSON {
	for _, u := range columnUpgrades {
		c = u.apply(c)
	}
	return c
}
