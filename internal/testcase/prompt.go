package testcase

import "fmt"

// SystemPrompt frames the model as a test analyst.
const SystemPrompt = "You are an expert software testing analyst. Generate comprehensive manual test cases based on software requirements."

const promptTemplate = `
Please analyze the following software requirement document and generate comprehensive manual test cases.

REQUIREMENT DOCUMENT:
%s

INSTRUCTIONS:
1. Identify all features and functionalities described in the requirements
2. For each feature, generate relevant test cases
3. Include positive, negative, and edge case scenarios
4. Format the output as a JSON array where each test case has:
   - feature: The feature/functionality being tested
   - test_id: A unique identifier (e.g., TC001, TC002, etc.)
   - title: A clear, descriptive test case title
   - steps: An array of step-by-step instructions
   - expected_result: The expected outcome
   - priority: Test priority (High, Medium, or Low)

EXAMPLE FORMAT:
[
    {
        "feature": "User Login",
        "test_id": "TC001",
        "title": "Verify successful login with valid credentials",
        "steps": [
            "Navigate to login page",
            "Enter valid username",
            "Enter valid password",
            "Click Login button"
        ],
        "expected_result": "User successfully logs in and is redirected to dashboard",
        "priority": "High"
    }
]

Please provide ONLY the JSON array response, no additional text.
`

// BuildPrompt embeds the requirement text into the generation prompt.
func BuildPrompt(requirement string) string {
	return fmt.Sprintf(promptTemplate, requirement)
}
