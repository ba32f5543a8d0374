package narrowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/parser"
)

func analyze(t *testing.T, path, source string) []finding.Finding {
	t.Helper()

	p, err := parser.CreateParser(path)
	require.NoError(t, err)
	defer p.Close()

	result, err := p.Parse([]byte(source), path)
	require.NoError(t, err)
	defer result.Close()

	return Detect(result)
}

func TestNarrowingViolations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		count  int
	}{
		{
			name: "falsy guard without exit then use",
			source: `function load(user) {
  if (!user) {
    console.log("missing user");
  }
  return user.name;
}
`,
			count: 1,
		},
		{
			name: "guard that returns is safe",
			source: `function load(user) {
  if (!user) {
    return null;
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "guard that throws is safe",
			source: `function load(user) {
  if (!user) {
    throw new Error("missing user");
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "reassignment inside guard narrows",
			source: `function load(user) {
  if (!user) {
    user = defaultUser();
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "reassignment between guard and use stops the search",
			source: `function load(user) {
  if (!user) {
    console.log("missing user");
  }
  user = defaultUser();
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "else branch handles both outcomes",
			source: `function load(user) {
  if (!user) {
    console.log("missing user");
  } else {
    console.log("ok");
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "nested if exits only when both arms exit",
			source: `function load(user) {
  if (!user) {
    if (strict) {
      throw new Error("missing");
    } else {
      return null;
    }
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "nested if with non-exiting arm does not exit",
			source: `function load(user) {
  if (!user) {
    if (strict) {
      throw new Error("missing");
    } else {
      console.log("missing user");
    }
  }
  return user.name;
}
`,
			count: 1,
		},
		{
			name: "equality guard against null",
			source: `function load(user) {
  if (user == null) {
    console.log("missing user");
  }
  return user.name;
}
`,
			count: 1,
		},
		{
			name: "strict inequality guard against undefined",
			source: `function load(user) {
  if (user !== undefined) {
    console.log("have user");
  }
  return user.name;
}
`,
			count: 1,
		},
		{
			name: "negated member access is not tracked",
			source: `function load(user) {
  if (!user.active) {
    console.log("inactive");
  }
  return user.name;
}
`,
			count: 0,
		},
		{
			name: "call on guarded identifier counts as use",
			source: `function run(callback) {
  if (!callback) {
    console.log("no callback");
  }
  callback();
}
`,
			count: 1,
		},
		{
			name: "index access counts as use",
			source: `function first(items) {
  if (!items) {
    console.log("no items");
  }
  return items[0];
}
`,
			count: 1,
		},
		{
			name: "at most one violation per guard",
			source: `function load(user) {
  if (!user) {
    console.log("missing user");
  }
  console.log(user.name);
  console.log(user.email);
}
`,
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := analyze(t, "app.js", tt.source)
			assert.Len(t, findings, tt.count)
			for _, f := range findings {
				assert.Equal(t, finding.NarrowingViolation, f.Category)
			}
		})
	}
}

// An optional-chain guard reduces to its root identifier, so the later plain
// member access on that root is flagged.
func TestNarrowingOptionalChainGuard(t *testing.T) {
	source := `function notify(profile) {
  if (profile?.email == null) {
    console.log("no email");
  }
  sendTo(profile.email);
}
`
	findings := analyze(t, "app.ts", source)

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "app.ts", f.File)
	assert.Equal(t, 5, f.Line)
	assert.Equal(t, 10, f.Column)
	assert.Equal(t, "profile used without narrowing after non-exiting guard", f.Message)
}

func TestNarrowingFindingPosition(t *testing.T) {
	source := `function load(user) {
  if (!user) {
    console.log("missing user");
  }
  return user.name;
}
`
	findings := analyze(t, "app.js", source)

	require.Len(t, findings, 1)
	assert.Equal(t, 5, findings[0].Line)
	assert.Equal(t, 10, findings[0].Column)
}

func TestNarrowingIgnoresOtherLanguages(t *testing.T) {
	source := `f = items
if not f:
    print("empty")
print(f[0])
`
	findings := analyze(t, "script.py", source)
	assert.Empty(t, findings)
}
