package services

// EditorRole selects which wizard editor a template targets. The role is
// an explicit parameter on the template endpoints rather than something
// inferred from surrounding content.
type EditorRole string

const (
	RoleStatementEditor EditorRole = "statement"
	RoleSolutionEditor  EditorRole = "solution"
)

// TemplateKind selects between the minimal skeleton and a fully worked
// example.
type TemplateKind string

const (
	TemplateBasic    TemplateKind = "basic"
	TemplateAdvanced TemplateKind = "advanced"
)

type TemplateInfo struct {
	Role EditorRole   `json:"role"`
	Kind TemplateKind `json:"kind"`
	Name string       `json:"name"`
}

type templateService struct{}

func NewTemplateService() TemplateService {
	return &templateService{}
}

func (s *templateService) GetTemplate(role EditorRole, kind TemplateKind) (string, error) {
	byKind, ok := editorTemplates[role]
	if !ok {
		return "", ErrUnknownEditorRole
	}
	tpl, ok := byKind[kind]
	if !ok {
		return "", ErrUnknownTemplateKind
	}
	return tpl, nil
}

func (s *templateService) ListTemplates() []TemplateInfo {
	return []TemplateInfo{
		{Role: RoleStatementEditor, Kind: TemplateBasic, Name: "Basic problem statement"},
		{Role: RoleStatementEditor, Kind: TemplateAdvanced, Name: "Detailed problem statement"},
		{Role: RoleSolutionEditor, Kind: TemplateBasic, Name: "Basic solution"},
		{Role: RoleSolutionEditor, Kind: TemplateAdvanced, Name: "Detailed solution"},
	}
}

// Template content is stored verbatim; the browser editor renders and
// edits it as HTML.
var editorTemplates = map[EditorRole]map[TemplateKind]string{
	RoleStatementEditor: {
		TemplateBasic: `<h2>Problem Title</h2>
<p>Describe the problem here.</p>
<h3>Input</h3>
<p>Describe the input format.</p>
<h3>Output</h3>
<p>Describe the expected output.</p>
<h3>Example</h3>
<pre>Input:
...
Output:
...</pre>`,
		TemplateAdvanced: `<h2>Two Sum</h2>
<p>Given an array of integers <code>nums</code> and an integer <code>target</code>,
return the indices of the two numbers that add up to <code>target</code>.</p>
<p>You may assume that each input has exactly one solution, and you may not
use the same element twice.</p>
<h3>Input</h3>
<p>The first line contains the integer <code>n</code> and the integer
<code>target</code>. The second line contains <code>n</code> space-separated
integers.</p>
<h3>Output</h3>
<p>Two space-separated indices in ascending order.</p>
<h3>Constraints</h3>
<ul>
<li>2 &le; n &le; 10<sup>4</sup></li>
<li>-10<sup>9</sup> &le; nums[i], target &le; 10<sup>9</sup></li>
</ul>
<h3>Example</h3>
<pre>Input:
4 9
2 7 11 15
Output:
0 1</pre>
<h3>Notes</h3>
<p>A brute-force solution runs in O(n&sup2;); can you do better?</p>`,
	},
	RoleSolutionEditor: {
		TemplateBasic: `<h2>Solution</h2>
<p>Explain the approach here.</p>
<h3>Complexity</h3>
<p>Time: O(?), Space: O(?)</p>`,
		TemplateAdvanced: `<h2>Solution: Hash Map</h2>
<p>Iterate once over the array. For each element, check whether
<code>target - nums[i]</code> was already seen; if so the answer is the
stored index and the current one. Otherwise record <code>nums[i]</code>
with its index.</p>
<h3>Reference implementation</h3>
<pre><code>def two_sum(nums, target):
    seen = {}
    for i, x in enumerate(nums):
        if target - x in seen:
            return seen[target - x], i
        seen[x] = i</code></pre>
<h3>Complexity</h3>
<p>Time: O(n) — a single pass with constant-time lookups.<br>
Space: O(n) for the hash map.</p>
<h3>Common pitfalls</h3>
<ul>
<li>Returning values instead of indices.</li>
<li>Using the same element twice when <code>target = 2 * nums[i]</code>.</li>
</ul>`,
	},
}
